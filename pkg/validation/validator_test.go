package validation

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"send-to-print/internal/dto"
)

func validOrder() dto.CreateOrderDTO {
	return dto.CreateOrderDTO{
		ShopID:           1,
		UserID:           "123456",
		Pages:            3,
		Color:            "bw",
		Price:            decimal.RequireFromString("45.00"),
		ConfirmationCode: "4821",
		FilePath:         "orders/2026/10/17/a.pdf",
	}
}

func TestValidate_CreateOrder(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(validOrder()))

	tests := []struct {
		name   string
		mutate func(*dto.CreateOrderDTO)
	}{
		{"неизвестная цветность", func(o *dto.CreateOrderDTO) { o.Color = "sepia" }},
		{"код из трёх цифр", func(o *dto.CreateOrderDTO) { o.ConfirmationCode = "123" }},
		{"код с буквами", func(o *dto.CreateOrderDTO) { o.ConfirmationCode = "12a4" }},
		{"отрицательная цена", func(o *dto.CreateOrderDTO) { o.Price = decimal.NewFromInt(-5) }},
		{"нет страниц", func(o *dto.CreateOrderDTO) { o.Pages = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOrder()
			tt.mutate(&o)
			assert.Error(t, v.Validate(o))
		})
	}
}

func TestValidate_CreateOrderPriceIsOptional(t *testing.T) {
	v := New()

	o := validOrder()
	o.Price = decimal.Zero
	assert.NoError(t, v.Validate(o))
}

func TestValidate_CompleteOrderCodeIsOptional(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(dto.CompleteOrderDTO{}))
	assert.NoError(t, v.Validate(dto.CompleteOrderDTO{ConfirmationCode: "12345"}))
	assert.Error(t, v.Validate(dto.CompleteOrderDTO{ConfirmationCode: "123456"}))
}

func TestValidateFile(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n")
	header := &multipart.FileHeader{Filename: "doc.pdf", Size: int64(len(pdf))}

	assert.NoError(t, ValidateFile(header, bytes.NewReader(pdf), "order_file"))

	exe := []byte("MZ\x90\x00\x03\x00\x00\x00")
	assert.Error(t, ValidateFile(&multipart.FileHeader{Filename: "a.exe", Size: 8}, bytes.NewReader(exe), "order_file"))

	big := &multipart.FileHeader{Filename: "big.pdf", Size: 21 * 1024 * 1024}
	assert.Error(t, ValidateFile(big, bytes.NewReader(pdf), "order_file"))

	assert.Error(t, ValidateFile(header, bytes.NewReader(pdf), "unknown"))
}
