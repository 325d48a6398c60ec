// Package store implements the HTTP client for the record store: five
// entity-scoped JSON resources (clients, stations, fuel types, cards,
// operations). The dashboard holds no persistence of its own; everything it
// reads or writes goes through this client.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fuelcards/internal/card"
	"fuelcards/internal/client"
	"fuelcards/internal/fueltype"
	"fuelcards/internal/ledger"
	"fuelcards/internal/metrics"
	"fuelcards/internal/station"
)

// StatusError carries the HTTP status and the server-supplied message of a
// failed record-store call.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record store: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("record store: status %d", e.Code)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// do issues one request to the record store. Mutating requests carry a
// client-generated X-Request-Id so the store can deduplicate retried
// submissions. A 2xx response with an empty body is not an error even when
// out is non-nil: some store paths return nothing.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordStoreRequest(method, path, "error")
		return fmt.Errorf("record store request: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordStoreRequest(method, path, strconv.Itoa(resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read record store response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := &StatusError{Code: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			serverErr.Message = payload.Error
		}
		return serverErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode record store response: %w", err)
	}
	return nil
}

func idQuery(id int) url.Values {
	return url.Values{"id": []string{strconv.Itoa(id)}}
}

// --- Clients ---

func (c *Client) ListClients(ctx context.Context) ([]client.Client, error) {
	var resp struct {
		Clients []client.Client `json:"clients"`
	}
	if err := c.do(ctx, http.MethodGet, "/clients", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Clients, nil
}

func (c *Client) CreateClient(ctx context.Context, cl client.Client) (client.Client, error) {
	var resp struct {
		Client client.Client `json:"client"`
	}
	if err := c.do(ctx, http.MethodPost, "/clients", nil, cl, &resp); err != nil {
		return client.Client{}, err
	}
	return resp.Client, nil
}

func (c *Client) UpdateClient(ctx context.Context, cl client.Client) error {
	return c.do(ctx, http.MethodPut, "/clients", nil, cl, nil)
}

func (c *Client) DeleteClient(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/clients", idQuery(id), nil, nil)
}

// --- Stations ---

func (c *Client) ListStations(ctx context.Context) ([]station.Station, error) {
	var resp struct {
		Stations []station.Station `json:"stations"`
	}
	if err := c.do(ctx, http.MethodGet, "/stations", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stations, nil
}

func (c *Client) CreateStation(ctx context.Context, s station.Station) (station.Station, error) {
	var resp struct {
		Station station.Station `json:"station"`
	}
	if err := c.do(ctx, http.MethodPost, "/stations", nil, s, &resp); err != nil {
		return station.Station{}, err
	}
	return resp.Station, nil
}

func (c *Client) UpdateStation(ctx context.Context, s station.Station) error {
	return c.do(ctx, http.MethodPut, "/stations", nil, s, nil)
}

func (c *Client) DeleteStation(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/stations", idQuery(id), nil, nil)
}

// --- Fuel types ---

func (c *Client) ListFuelTypes(ctx context.Context) ([]fueltype.FuelType, error) {
	var resp struct {
		FuelTypes []fueltype.FuelType `json:"fuel_types"`
	}
	if err := c.do(ctx, http.MethodGet, "/fuel-types", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.FuelTypes, nil
}

func (c *Client) CreateFuelType(ctx context.Context, ft fueltype.FuelType) (fueltype.FuelType, error) {
	var resp struct {
		FuelType fueltype.FuelType `json:"fuel_type"`
	}
	if err := c.do(ctx, http.MethodPost, "/fuel-types", nil, ft, &resp); err != nil {
		return fueltype.FuelType{}, err
	}
	return resp.FuelType, nil
}

func (c *Client) UpdateFuelType(ctx context.Context, ft fueltype.FuelType) error {
	return c.do(ctx, http.MethodPut, "/fuel-types", nil, ft, nil)
}

func (c *Client) DeleteFuelType(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/fuel-types", idQuery(id), nil, nil)
}

// --- Cards ---

func (c *Client) ListCards(ctx context.Context) ([]card.Card, error) {
	var resp struct {
		Cards []card.Card `json:"cards"`
	}
	if err := c.do(ctx, http.MethodGet, "/cards", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}

func (c *Client) CreateCard(ctx context.Context, cd card.Card) (card.Card, error) {
	var resp struct {
		Card card.Card `json:"card"`
	}
	if err := c.do(ctx, http.MethodPost, "/cards", nil, cd, &resp); err != nil {
		return card.Card{}, err
	}
	return resp.Card, nil
}

func (c *Client) UpdateCard(ctx context.Context, cd card.Card) error {
	return c.do(ctx, http.MethodPut, "/cards", nil, cd, nil)
}

func (c *Client) DeleteCard(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/cards", idQuery(id), nil, nil)
}

// --- Operations ---

func (c *Client) ListOperations(ctx context.Context) ([]ledger.Operation, error) {
	var resp struct {
		Operations []ledger.Operation `json:"operations"`
	}
	if err := c.do(ctx, http.MethodGet, "/operations", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Operations, nil
}

func (c *Client) CreateOperation(ctx context.Context, op ledger.Operation) (ledger.Operation, error) {
	var resp struct {
		Operation ledger.Operation `json:"operation"`
	}
	if err := c.do(ctx, http.MethodPost, "/operations", nil, op, &resp); err != nil {
		return ledger.Operation{}, err
	}
	return resp.Operation, nil
}

func (c *Client) UpdateOperation(ctx context.Context, op ledger.Operation) error {
	return c.do(ctx, http.MethodPut, "/operations", nil, op, nil)
}

func (c *Client) DeleteOperation(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/operations", idQuery(id), nil, nil)
}
