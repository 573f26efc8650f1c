package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// KeyLowStockThreshold é a chave antiga do limite de estoque baixo, hoje dentro de settings
const KeyLowStockThreshold = "lowStockThreshold"

// Alias liga um nome antigo de chave à chave canônica
type Alias struct {
	Legacy    string
	Canonical string
}

// LegacyAliases lista os nomes antigos em ordem de prioridade: o primeiro encontrado vence
var LegacyAliases = []Alias{
	{"products", KeyProducts},
	{"inventory", KeyProducts},
	{"cart", CartKey("")},
	{"sales", KeySales},
	{"transactions", KeySales},
	{"salesHistory", KeySales},
	{"settings", KeySettings},
	{"appSettings", KeySettings},
}

// MigrationReport resume o que foi migrado
type MigrationReport struct {
	Moved   map[string]string `json:"moved"`
	Dropped []string          `json:"dropped"`
}

// MigrateLegacyKeys copia chaves antigas para as canônicas (quando a canônica ainda não existe)
// e remove as antigas. O limite de estoque solto é incorporado em settings.stock.
func MigrateLegacyKeys(ctx context.Context, s Store) (*MigrationReport, error) {
	report := &MigrationReport{Moved: map[string]string{}}

	for _, alias := range LegacyAliases {
		legacy, canonical := alias.Legacy, alias.Canonical
		var moved, dropped bool
		err := s.Update(ctx, []string{legacy, canonical}, func(cur map[string][]byte) (map[string][]byte, error) {
			moved, dropped = false, false
			old, ok := cur[legacy]
			if !ok {
				return nil, nil
			}
			writes := map[string][]byte{legacy: nil}
			if _, exists := cur[canonical]; exists {
				dropped = true
				return writes, nil
			}
			writes[canonical] = old
			moved = true
			return writes, nil
		})
		if err != nil {
			return nil, fmt.Errorf("erro ao migrar chave %s: %w", legacy, err)
		}
		if moved {
			report.Moved[legacy] = canonical
		}
		if dropped {
			report.Dropped = append(report.Dropped, legacy)
		}
	}

	err := s.Update(ctx, []string{KeyLowStockThreshold, KeySettings}, func(cur map[string][]byte) (map[string][]byte, error) {
		raw, ok := cur[KeyLowStockThreshold]
		if !ok {
			return nil, nil
		}
		threshold, err := parseThreshold(raw)
		if err != nil {
			return nil, err
		}

		doc := map[string]json.RawMessage{}
		if existing, ok := cur[KeySettings]; ok {
			if err := json.Unmarshal(existing, &doc); err != nil {
				return nil, fmt.Errorf("erro ao decodificar settings: %w", err)
			}
		}
		stock := map[string]json.RawMessage{}
		if section, ok := doc["stock"]; ok {
			if err := json.Unmarshal(section, &stock); err != nil {
				return nil, fmt.Errorf("erro ao decodificar settings.stock: %w", err)
			}
		}
		// O valor dentro de settings prevalece sobre a chave solta
		if _, ok := stock["lowStockThreshold"]; !ok {
			stock["lowStockThreshold"] = json.RawMessage(strconv.Itoa(threshold))
		}
		sectionRaw, err := json.Marshal(stock)
		if err != nil {
			return nil, err
		}
		doc["stock"] = sectionRaw
		merged, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		report.Moved[KeyLowStockThreshold] = KeySettings + ".stock.lowStockThreshold"
		return map[string][]byte{KeySettings: merged, KeyLowStockThreshold: nil}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao migrar limite de estoque: %w", err)
	}

	return report, nil
}

func parseThreshold(raw []byte) (int, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("lowStockThreshold inválido: " + s)
	}
	return n, nil
}
