package dto

import (
	"encoding/json"
)

// SettingsFieldRequest representa o novo valor de um campo de configuração
type SettingsFieldRequest struct {
	Value json.RawMessage `json:"value" binding:"required" swaggertype:"object"`
}
