package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, name, price string) Product {
	return Product{ID: ProductID(id), Name: name, Price: decimal.RequireFromString(price)}
}

func apply(s State, cmds ...Command) State {
	for _, c := range cmds {
		s = Apply(s, c)
	}
	return s
}

func TestApply_AddMergesByID(t *testing.T) {
	milk := product("1", "Milk", "2.00")

	s := apply(State{}, Add{Product: milk}, Add{Product: milk})

	require.Len(t, s.Items, 1)
	assert.Equal(t, 2, s.Items[0].Quantity)
}

func TestApply_AddAppendsInInsertionOrder(t *testing.T) {
	s := apply(State{},
		Add{Product: product("b", "Bread", "3.10")},
		Add{Product: product("a", "Apple", "0.50")},
		Add{Product: product("b", "Bread", "3.10")},
	)

	require.Len(t, s.Items, 2)
	assert.Equal(t, ProductID("b"), s.Items[0].ID)
	assert.Equal(t, ProductID("a"), s.Items[1].ID)
}

func TestApply_AddKeepsPriceCapturedAtFirstAdd(t *testing.T) {
	s := apply(State{},
		Add{Product: product("1", "Milk", "2.00")},
		Add{Product: product("1", "Milk", "9.99")},
	)

	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].Price.Equal(decimal.RequireFromString("2.00")))
}

func TestApply_AddAlwaysIncrementsByOne(t *testing.T) {
	milk := product("1", "Milk", "2.00")
	s := apply(State{}, Add{Product: milk}, SetQuantity{ProductID: "1", Quantity: 5}, Add{Product: milk})

	it, ok := s.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, 6, it.Quantity)
}

func TestApply_SetQuantityIsIdempotent(t *testing.T) {
	s := apply(State{}, Add{Product: product("1", "Milk", "2.00")}, SetQuantity{ProductID: "1", Quantity: 3})
	again := Apply(s, SetQuantity{ProductID: "1", Quantity: 3})

	assert.Equal(t, s, again)
}

func TestApply_SetQuantityZeroRemoves(t *testing.T) {
	for _, q := range []int{0, -1} {
		s := apply(State{}, Add{Product: product("1", "Milk", "2.00")}, SetQuantity{ProductID: "1", Quantity: q})

		_, ok := s.Lookup("1")
		assert.False(t, ok, "quantity %d", q)
		assert.Empty(t, s.Items)
	}
}

func TestApply_SetQuantityOnAbsentIDIsNoop(t *testing.T) {
	s := apply(State{}, Add{Product: product("1", "Milk", "2.00")})
	next := Apply(s, SetQuantity{ProductID: "2", Quantity: 4})

	assert.Equal(t, s.Items, next.Items)
}

func TestApply_RemoveAbsentLeavesSequence(t *testing.T) {
	s := apply(State{},
		Add{Product: product("1", "Milk", "2.00")},
		Add{Product: product("2", "Eggs", "5.50")},
	)
	next := Apply(s, Remove{ProductID: "404"})

	assert.Equal(t, s.Items, next.Items)
}

func TestApply_RemovePreservesOrderOfRest(t *testing.T) {
	s := apply(State{},
		Add{Product: product("1", "Milk", "2.00")},
		Add{Product: product("2", "Eggs", "5.50")},
		Add{Product: product("3", "Rice", "1.25")},
		Remove{ProductID: "2"},
	)

	require.Len(t, s.Items, 2)
	assert.Equal(t, ProductID("1"), s.Items[0].ID)
	assert.Equal(t, ProductID("3"), s.Items[1].ID)
}

func TestApply_Clear(t *testing.T) {
	s := apply(State{}, Add{Product: product("1", "Milk", "2.00")}, Clear{})
	assert.Empty(t, s.Items)
	assert.Zero(t, s.Count())
	assert.True(t, s.Subtotal().IsZero())
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	s := apply(State{}, Add{Product: product("1", "Milk", "2.00")})
	_ = Apply(s, Add{Product: product("1", "Milk", "2.00")})
	_ = Apply(s, SetQuantity{ProductID: "1", Quantity: 7})

	assert.Equal(t, 1, s.Items[0].Quantity)
}

func TestState_Aggregates(t *testing.T) {
	s := apply(State{},
		Add{Product: product("1", "Flour", "2.00")},
		SetQuantity{ProductID: "1", Quantity: 3},
		Add{Product: product("2", "Honey", "5.50")},
	)

	assert.Equal(t, 4, s.Count())
	assert.Equal(t, "11.5", s.Subtotal().String())
}

func TestState_AggregatesIgnoreInsertionOrder(t *testing.T) {
	a := product("1", "Flour", "2.00")
	b := product("2", "Honey", "5.50")
	c := product("3", "Salt", "0.99")

	forward := apply(State{}, Add{Product: a}, Add{Product: b}, Add{Product: b}, Add{Product: c})
	reverse := apply(State{}, Add{Product: c}, Add{Product: b}, Add{Product: a}, Add{Product: b})

	assert.Equal(t, forward.Count(), reverse.Count())
	assert.True(t, forward.Subtotal().Equal(reverse.Subtotal()))
	assert.Equal(t, ProductID("1"), forward.Items[0].ID)
	assert.Equal(t, ProductID("3"), reverse.Items[0].ID)
}

func TestState_EmptyAggregates(t *testing.T) {
	var s State
	assert.Zero(t, s.Count())
	assert.True(t, s.Subtotal().IsZero())
	assert.False(t, s.Contains("1"))
}
