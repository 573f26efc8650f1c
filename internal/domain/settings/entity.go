package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hugohenrick/warung-digital/internal/domain/sale"
)

var (
	ErrUnknownSection = errors.New("seção de configuração desconhecida")
	ErrUnknownField   = errors.New("campo de configuração desconhecido")
	ErrInvalidValue   = errors.New("valor de configuração inválido")
)

// GeneralSettings identifica a loja
type GeneralSettings struct {
	ShopName string `json:"shopName"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Currency string `json:"currency"`
}

// PaymentSettings define as formas de pagamento habilitadas e dados do recebedor
type PaymentSettings struct {
	Cash            bool   `json:"cash"`
	QRIS            bool   `json:"qris"`
	Transfer        bool   `json:"transfer"`
	Card            bool   `json:"card"`
	QRISMerchantID  string `json:"qrisMerchantId"`
	BankName        string `json:"bankName"`
	BankAccount     string `json:"bankAccount"`
	BankAccountName string `json:"bankAccountName"`
}

// CashierSettings agrupa preferências do caixa
type CashierSettings struct {
	AutoPrintReceipt      bool `json:"autoPrintReceipt"`
	ConfirmBeforeCheckout bool `json:"confirmBeforeCheckout"`
	SoundOnAdd            bool `json:"soundOnAdd"`
	RequireCashTendered   bool `json:"requireCashTendered"`
}

// StockSettings define o alerta de estoque baixo
type StockSettings struct {
	LowStockThreshold    int  `json:"lowStockThreshold"`
	LowStockNotification bool `json:"lowStockNotification"`
}

// ReceiptSettings define os textos do cupom
type ReceiptSettings struct {
	Header      string `json:"header"`
	Footer      string `json:"footer"`
	AutoCut     bool   `json:"autoCut"`
	ShowCashier bool   `json:"showCashier"`
}

// Settings é o documento completo de configurações
type Settings struct {
	General GeneralSettings `json:"general"`
	Payment PaymentSettings `json:"payment"`
	Cashier CashierSettings `json:"cashier"`
	Stock   StockSettings   `json:"stock"`
	Receipt ReceiptSettings `json:"receipt"`
}

// Defaults retorna os valores padrão documentados
func Defaults() Settings {
	return Settings{
		General: GeneralSettings{
			ShopName: "Warung Digital",
			Currency: "IDR",
		},
		Payment: PaymentSettings{
			Cash: true,
			QRIS: true,
		},
		Cashier: CashierSettings{
			AutoPrintReceipt:      false,
			ConfirmBeforeCheckout: true,
			SoundOnAdd:            true,
			RequireCashTendered:   true,
		},
		Stock: StockSettings{
			LowStockThreshold:    5,
			LowStockNotification: true,
		},
		Receipt: ReceiptSettings{
			Header:      "Warung Digital",
			Footer:      "Terima kasih atas kunjungan Anda",
			AutoCut:     true,
			ShowCashier: true,
		},
	}
}

// Decode mescla o documento persistido sobre os padrões: campos ausentes mantêm o padrão
func Decode(data []byte) (Settings, error) {
	s := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	if err := s.Validate(); err != nil {
		return Defaults(), err
	}
	return s, nil
}

// Validate verifica as invariantes das configurações
func (s Settings) Validate() error {
	if s.Stock.LowStockThreshold < 0 {
		return fmt.Errorf("%w: stock.lowStockThreshold deve ser >= 0", ErrInvalidValue)
	}
	if len(s.EnabledMethods()) == 0 {
		return fmt.Errorf("%w: ao menos uma forma de pagamento deve estar habilitada", ErrInvalidValue)
	}
	return nil
}

// EnabledMethods lista as formas de pagamento habilitadas
func (s Settings) EnabledMethods() []sale.PaymentMethod {
	var out []sale.PaymentMethod
	if s.Payment.Cash {
		out = append(out, sale.MethodCash)
	}
	if s.Payment.QRIS {
		out = append(out, sale.MethodQRIS)
	}
	if s.Payment.Transfer {
		out = append(out, sale.MethodTransfer)
	}
	if s.Payment.Card {
		out = append(out, sale.MethodCard)
	}
	return out
}

// MethodEnabled indica se a forma de pagamento está habilitada
func (s Settings) MethodEnabled(m sale.PaymentMethod) bool {
	for _, e := range s.EnabledMethods() {
		if e == m {
			return true
		}
	}
	return false
}

// WithField devolve uma cópia com section.field = value (JSON), validando nome e tipo
func (s Settings) WithField(section, field string, value json.RawMessage) (Settings, error) {
	doc, err := toDocument(s)
	if err != nil {
		return s, err
	}

	sec, ok := doc[section]
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}
	if _, ok := sec[field]; !ok {
		return s, fmt.Errorf("%w: %s.%s", ErrUnknownField, section, field)
	}
	sec[field] = value

	raw, err := json.Marshal(doc)
	if err != nil {
		return s, err
	}

	next := Defaults()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return s, fmt.Errorf("%w: %s.%s: %v", ErrInvalidValue, section, field, err)
	}
	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

func toDocument(s Settings) (map[string]map[string]json.RawMessage, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	doc := map[string]map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
