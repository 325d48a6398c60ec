package station

// Station — АЗС сети (либо склад для внутренних операций).
type Station struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Code1C  string `json:"code_1c"`
	Address string `json:"address"`
}
