package cart

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestLinesAdd_SequenceOfDeltas(t *testing.T) {
	item := Item{Code: "A", Name: "Kopi", Price: 1000}
	var ls Lines
	var err error

	for _, d := range []int{1, 2, -1, 3} {
		ls, err = ls.Add(item, d)
		require.NoError(t, err)
	}
	assert.Equal(t, 5, ls.TotalQty())

	ls, err = ls.Add(item, -10)
	require.NoError(t, err)
	assert.Empty(t, ls, "linha removida quando a quantidade chega a zero ou menos")
	assert.Equal(t, 0, ls.TotalQty())
}

func TestLinesAdd_NonPositiveDeltaOnNewCodeIsNoop(t *testing.T) {
	ls, err := Lines(nil).Add(Item{Code: "A"}, 0)
	require.NoError(t, err)
	assert.Empty(t, ls)

	ls, err = ls.Add(Item{Code: "A"}, -2)
	require.NoError(t, err)
	assert.Empty(t, ls)
}

func TestLinesAdd_StockGuard(t *testing.T) {
	item := Item{Code: "A", Price: 1000, Stock: intPtr(5)}

	ls, err := Lines(nil).Add(item, 6)
	var se *StockLimitError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 6, se.Requested)
	assert.Equal(t, 5, se.Available)
	assert.Empty(t, ls)

	ls, err = ls.Add(item, 5)
	require.NoError(t, err)

	before := ls
	ls, err = ls.Add(item, 1)
	require.Error(t, err)
	assert.Equal(t, before, ls)

	// Diminuir continua permitido mesmo acima do estoque
	ls, err = ls.Add(Item{Code: "A", Stock: intPtr(2)}, -1)
	require.NoError(t, err)
	assert.Equal(t, 4, ls[0].Qty)
}

func TestLinesAdd_UnknownStockIsNotGuarded(t *testing.T) {
	ls, err := Lines(nil).Add(Item{Code: "A"}, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1000, ls.TotalQty())
}

func TestLinesAdd_DoesNotMutateReceiver(t *testing.T) {
	orig := Lines{{Code: "A", Price: 10, Qty: 1}}
	next, err := orig.Add(Item{Code: "A"}, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, orig[0].Qty)
	assert.Equal(t, 3, next[0].Qty)
}

func TestTotalsUseSnapshotPrice(t *testing.T) {
	ls, _ := Lines(nil).Add(Item{Code: "A", Price: 1000}, 2)
	ls, _ = ls.Add(Item{Code: "B", Price: 500}, 3)
	// O preço informado numa adição posterior não altera a linha existente
	ls, _ = ls.Add(Item{Code: "A", Price: 9999}, 1)

	assert.Equal(t, 6, ls.TotalQty())
	assert.Equal(t, 4500.0, ls.TotalPrice())
}

func TestEncodeDecodeRoundTripPreservesOrder(t *testing.T) {
	ls := Lines{
		{Code: "Z", Name: "Zeta", Price: 1, Qty: 1},
		{Code: "A", Name: "Alfa", Price: 2.5, Qty: 4},
		{Code: "M", Name: "Mi", Price: 3, Qty: 2},
	}
	data, err := Encode(ls)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, ls, back)
}

func TestDecodeRejectsInvalid(t *testing.T) {
	_, err := Decode([]byte(`[{"code":"A","qty":0,"price":1}]`))
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = Decode([]byte(`[{"code":"A","qty":1},{"code":"A","qty":2}]`))
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = Decode([]byte(`nope`))
	assert.ErrorIs(t, err, ErrInvalidLine)
}
