package client

// Client — организация-владелец топливных карт.
type Client struct {
	ID       int    `json:"id"`
	INN      string `json:"inn"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Login    string `json:"login"`
	Password string `json:"password,omitempty"`
	Admin    bool   `json:"admin"`
}
