package dto

// VademecumResponse ficha del vademécum.
type VademecumResponse struct {
	ID                    string `json:"id"`
	TradeName             string `json:"trade_name"`
	Presentation          string `json:"presentation"`
	PharmacologicalAction string `json:"pharmacological_action"`
	ActiveIngredient      string `json:"active_ingredient"`
	Laboratory            string `json:"laboratory"`
}
