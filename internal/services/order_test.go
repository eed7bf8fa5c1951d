package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"send-to-print/internal/dto"
	"send-to-print/internal/entities"
	"send-to-print/internal/events"
	"send-to-print/pkg/constants"
	apperrors "send-to-print/pkg/errors"
	"send-to-print/pkg/utils"
)

func operatorCtx(shopID uint64) context.Context {
	return utils.WithShopID(context.Background(), shopID)
}

func validOrder() dto.CreateOrderDTO {
	return dto.CreateOrderDTO{
		ShopID:           1,
		UserID:           "123456",
		Pages:            3,
		Color:            constants.ColorBW,
		Price:            decimal.RequireFromString("45.004"),
		ConfirmationCode: "4821",
		FileExtension:    "pdf",
		FilePath:         "orders/2026/10/17/doc.pdf",
	}
}

func TestCreateOrder(t *testing.T) {
	h := newHarness(t)

	resp, err := h.orders.CreateOrder(context.Background(), validOrder())
	require.NoError(t, err)

	assert.Equal(t, constants.StatusCreated, resp.Status)
	assert.Equal(t, "45.00", resp.Price.StringFixed(2))
	stored, ok := h.store.get(resp.ID)
	require.True(t, ok)
	assert.Equal(t, "4821", stored.ConfirmationCode)

	require.Equal(t, 1, h.pub.count())
	_, isCreated := h.pub.events[0].(events.OrderCreatedEvent)
	assert.True(t, isCreated)
}

func TestCreateOrder_PriceFromShopRate(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		shopID uint64
		color  string
		pages  int
		want   string
	}{
		{"чб по 15", 1, constants.ColorBW, 3, "45.00"},
		{"цвет по 40", 1, constants.ColorColor, 2, "80.00"},
		{"чб по 12.50", 2, constants.ColorBW, 3, "37.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validOrder()
			data.ShopID = tt.shopID
			data.Color = tt.color
			data.Pages = tt.pages
			data.Price = decimal.Zero

			resp, err := h.orders.CreateOrder(context.Background(), data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.Price.StringFixed(2))

			stored, ok := h.store.get(resp.ID)
			require.True(t, ok)
			assert.Equal(t, tt.want, stored.Price.StringFixed(2))
		})
	}
}

func TestCreateOrder_Rejects(t *testing.T) {
	h := newHarness(t)
	h.shops.shops[3] = &entities.Shop{ID: 3, FranchiseID: 1, IsActive: false}

	tests := []struct {
		name   string
		mutate func(*dto.CreateOrderDTO)
	}{
		{"отрицательная цена", func(d *dto.CreateOrderDTO) { d.Price = decimal.NewFromInt(-1) }},
		{"цена не по тарифу", func(d *dto.CreateOrderDTO) { d.Price = decimal.RequireFromString("30.00") }},
		{"нет цветного тарифа", func(d *dto.CreateOrderDTO) {
			d.ShopID = 2
			d.Color = constants.ColorColor
			d.Price = decimal.Zero
		}},
		{"неизвестная цветность", func(d *dto.CreateOrderDTO) { d.Color = "sepia" }},
		{"нет страниц", func(d *dto.CreateOrderDTO) { d.Pages = 0 }},
		{"неизвестная точка", func(d *dto.CreateOrderDTO) { d.ShopID = 99 }},
		{"точка отключена", func(d *dto.CreateOrderDTO) { d.ShopID = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validOrder()
			tt.mutate(&data)
			_, err := h.orders.CreateOrder(context.Background(), data)
			var invalid *apperrors.InvalidInputError
			assert.ErrorAs(t, err, &invalid)
		})
	}
	assert.Zero(t, h.pub.count())
}

func TestGetOrders_ScopedToOperatorShop(t *testing.T) {
	h := newHarness(t)
	own := h.seedOrder(constants.StatusCreated)
	paid := h.seedOrder(constants.StatusPaid)
	foreign := h.seedOrder(constants.StatusCreated)
	o, _ := h.store.get(foreign)
	o.ShopID = 2
	h.store.put(o)

	all, err := h.orders.GetOrders(operatorCtx(1), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, own, all[0].ID)
	assert.Equal(t, paid, all[1].ID)

	onlyPaid, err := h.orders.GetOrders(operatorCtx(1), []string{constants.StatusPaid})
	require.NoError(t, err)
	require.Len(t, onlyPaid, 1)
	assert.Equal(t, paid, onlyPaid[0].ID)

	_, err = h.orders.GetOrders(operatorCtx(1), []string{"printing"})
	var invalid *apperrors.InvalidInputError
	assert.ErrorAs(t, err, &invalid)

	_, err = h.orders.GetOrders(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrShopIDNotFoundInContext)
}

func TestGetOrderFile(t *testing.T) {
	h := newHarness(t)
	own := h.seedOrder(constants.StatusPaid)

	file, err := h.orders.GetOrderFile(operatorCtx(1), own)
	require.NoError(t, err)
	assert.Equal(t, own, file.OrderID)
	assert.Equal(t, "orders/2026/10/17/doc.pdf", file.FilePath)

	_, err = h.orders.GetOrderFile(operatorCtx(2), own)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = h.orders.GetOrderFile(operatorCtx(1), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	completed := h.seedOrder(constants.StatusCompleted)
	_, err = h.orders.GetOrderFile(operatorCtx(1), completed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = h.orders.GetOrderFile(context.Background(), own)
	assert.ErrorIs(t, err, apperrors.ErrShopIDNotFoundInContext)
}

func TestMarkReady(t *testing.T) {
	h := newHarness(t)

	for _, from := range []string{constants.StatusCreated, constants.StatusPaid} {
		id := h.seedOrder(from)
		res, err := h.orders.MarkReady(operatorCtx(1), id)
		require.NoError(t, err, from)
		assert.Equal(t, constants.StatusReady, res.Status)
		assert.Equal(t, constants.StatusReady, h.status(id))
	}

	id := h.seedOrder(constants.StatusWaitingPayment)
	_, err := h.orders.MarkReady(operatorCtx(1), id)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Equal(t, constants.StatusWaitingPayment, h.status(id))
}

func TestMarkReady_ForeignOrderLooksMissing(t *testing.T) {
	h := newHarness(t)
	id := h.seedOrder(constants.StatusPaid)

	_, err := h.orders.MarkReady(operatorCtx(2), id)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, constants.StatusPaid, h.status(id))
	assert.Zero(t, h.pub.count())
}

func TestComplete(t *testing.T) {
	h := newHarness(t)
	id := h.seedOrder(constants.StatusReady)

	_, err := h.orders.Complete(operatorCtx(1), id, dto.CompleteOrderDTO{ConfirmationCode: "0000"})
	var invalid *apperrors.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, constants.StatusReady, h.status(id))
	assert.Empty(t, h.files.deleted)

	res, err := h.orders.Complete(operatorCtx(1), id, dto.CompleteOrderDTO{ConfirmationCode: "4821"})
	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, res.Status)
	assert.Equal(t, []string{"orders/2026/10/17/doc.pdf"}, h.files.deleted)
}

func TestComplete_WithoutCodeAndFailedFileDelete(t *testing.T) {
	h := newHarness(t)
	h.files.err = errBoom
	id := h.seedOrder(constants.StatusReady)

	res, err := h.orders.Complete(operatorCtx(1), id, dto.CompleteOrderDTO{})

	require.NoError(t, err)
	assert.Equal(t, constants.StatusCompleted, res.Status)
	assert.Len(t, h.files.deleted, 1)
}

func TestComplete_RequiresReady(t *testing.T) {
	h := newHarness(t)
	id := h.seedOrder(constants.StatusPaid)

	_, err := h.orders.Complete(operatorCtx(1), id, dto.CompleteOrderDTO{ConfirmationCode: "4821"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	assert.Empty(t, h.files.deleted)
}

func TestTerminalStatesHaveNoEdges(t *testing.T) {
	all := []string{
		constants.StatusCreated, constants.StatusWaitingPayment, constants.StatusPaid,
		constants.StatusInProgress, constants.StatusReady, constants.StatusCompleted, constants.StatusCanceled,
	}
	for _, from := range []string{constants.StatusCompleted, constants.StatusCanceled, constants.StatusInProgress} {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
	for _, from := range all {
		assert.False(t, CanTransition(from, constants.StatusInProgress), from)
		assert.False(t, CanTransition(from, from), from)
	}
	assert.False(t, CanTransition(constants.StatusCreated, constants.StatusCanceled))
	assert.False(t, CanTransition(constants.StatusPaid, constants.StatusCanceled))
	assert.True(t, CanTransition(constants.StatusWaitingPayment, constants.StatusPaid))
}

func TestTerminalOrdersRejectEveryOperation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, status := range []string{constants.StatusCompleted, constants.StatusCanceled} {
		id := h.seedOrder(status)

		_, err := h.orders.MarkReady(operatorCtx(1), id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, status)
		_, err = h.orders.Complete(operatorCtx(1), id, dto.CompleteOrderDTO{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, status)
		_, err = h.payments.CreatePayment(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition, status)
		res, err := h.payments.CancelOnTimeout(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, dto.OutcomeIgnored, res.Status)

		assert.Equal(t, status, h.status(id))
	}
	assert.Zero(t, h.gateway.creates())
}
