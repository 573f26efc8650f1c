package confirm

import "context"

// Prompt descreve a ação destrutiva que aguarda confirmação
type Prompt struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Confirmer decide se uma ação destrutiva pode prosseguir. Recusar não é erro.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// Func adapta uma função comum para Confirmer
type Func func(ctx context.Context, p Prompt) bool

// Confirm implementa Confirmer
func (f Func) Confirm(ctx context.Context, p Prompt) bool {
	return f(ctx, p)
}

// Static responde sempre o mesmo valor
type Static bool

// Confirm implementa Confirmer
func (s Static) Confirm(context.Context, Prompt) bool {
	return bool(s)
}

const (
	Always = Static(true)
	Never  = Static(false)
)

// Approved trata confirmador nil como recusa
func Approved(ctx context.Context, c Confirmer, p Prompt) bool {
	if c == nil {
		return false
	}
	return c.Confirm(ctx, p)
}
