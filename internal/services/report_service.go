package services

import (
	"bytes"
	"context"
	"fmt"

	"send-to-print/internal/dto"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var reportHeaders = []interface{}{
	"№ заказа", "Статус", "Страниц", "Цветность", "Цена", "Оплачено", "Дата оплаты", "Код выдачи", "Создан",
}

type ReportServiceInterface interface {
	ExportOrders(ctx context.Context, statuses []string) ([]byte, error)
}

type ReportService struct {
	orders OrderServiceInterface
	logger *zap.Logger
}

func NewReportService(orders OrderServiceInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{orders: orders, logger: logger.Named("report_service")}
}

// ExportOrders строит XLSX по тем же правилам, что и список заказов оператора.
func (s *ReportService) ExportOrders(ctx context.Context, statuses []string) ([]byte, error) {
	orders, err := s.orders.GetOrders(ctx, statuses)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Заказы"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &reportHeaders); err != nil {
		return nil, fmt.Errorf("excel: %w", err)
	}
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A1", "I1", style)

	for i, item := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(item)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("excel: строка %d: %w", i+2, err)
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "F", "G", 20)
	_ = f.SetColWidth(sheet, "I", "I", 20)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("excel: запись: %w", err)
	}
	s.logger.Debug("Отчёт сформирован", zap.Int("rows", len(orders)))
	return buf.Bytes(), nil
}

func rowToSlice(item dto.OrderResponseDTO) []interface{} {
	paid, paidAt := "-", "-"
	if item.PaymentAmount != nil {
		paid = item.PaymentAmount.StringFixed(2)
	}
	if item.PaidAt != nil {
		paidAt = *item.PaidAt
	}
	color := "Ч/Б"
	if item.Color == "color" {
		color = "Цветная"
	}
	return []interface{}{
		item.ID, item.Status, item.Pages, color, item.Price.StringFixed(2), paid, paidAt, item.ConfirmationCode, item.CreatedAt,
	}
}
