package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/qr_attendance/internal/models"
	"github.com/qr_attendance/internal/repositories"
)

// EmployeeMetrics 是一名员工在某月的工时统计
type EmployeeMetrics struct {
	EmployeeID         string  `json:"employeeId"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	TotalHours         float64 `json:"totalHours"`
	DaysWorked         int     `json:"daysWorked"`
	AverageHoursPerDay float64 `json:"averageHoursPerDay"`
}

// MonthlyReport 是企业某月的工时汇总
type MonthlyReport struct {
	Year                    int               `json:"year"`
	Month                   int               `json:"month"`
	Employees               []EmployeeMetrics `json:"employees"`
	TotalHours              float64           `json:"totalHours"`
	AverageHoursPerEmployee float64           `json:"averageHoursPerEmployee"`
}

// MonthlyTotal 是某员工一个月的总工时
type MonthlyTotal struct {
	Month      int     `json:"month"`
	MonthName  string  `json:"monthName"`
	TotalHours float64 `json:"totalHours"`
}

// ReportService 定义了工时报表服务接口
type ReportService interface {
	MonthlyMetrics(ctx context.Context, companyID string, year int, month time.Month) (*MonthlyReport, error)
	EmployeeMonthlyTotals(ctx context.Context, companyID, employeeID string, year int) ([]MonthlyTotal, error)
	ExportMonthlyMetrics(ctx context.Context, companyID string, year int, month time.Month) ([]byte, error)
	ExportEmployeeMonthlyTotals(ctx context.Context, companyID, employeeID string, year int) ([]byte, error)
}

type reportService struct {
	events    repositories.TimeTrackingRepository
	employees repositories.EmployeeRepository
}

// NewReportService 创建 ReportService
func NewReportService(events repositories.TimeTrackingRepository, employees repositories.EmployeeRepository) ReportService {
	return &reportService{events: events, employees: employees}
}

func monthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func (s *reportService) MonthlyMetrics(ctx context.Context, companyID string, year int, month time.Month) (*MonthlyReport, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	employees, err := s.employees.ListByCompany(ctx, companyID, "")
	if err != nil {
		return nil, err
	}
	from, to := monthRange(year, month)
	events, err := s.events.ListRange(ctx, companyID, "", from, to)
	if err != nil {
		return nil, err
	}

	byEmployee := make(map[string][]models.TimeTrackingEvent)
	for _, e := range events {
		byEmployee[e.EmployeeID] = append(byEmployee[e.EmployeeID], e)
	}

	report := &MonthlyReport{Year: year, Month: int(month), Employees: make([]EmployeeMetrics, 0, len(employees))}
	for _, emp := range employees {
		summary := ComputeWorkHours(byEmployee[emp.ID])
		metrics := EmployeeMetrics{
			EmployeeID: emp.ID,
			Name:       emp.Name,
			Email:      emp.Email,
			TotalHours: summary.TotalHours,
			DaysWorked: summary.DaysWorked,
		}
		if summary.DaysWorked > 0 {
			metrics.AverageHoursPerDay = roundTenth(summary.TotalHours / float64(summary.DaysWorked))
		}
		report.Employees = append(report.Employees, metrics)
		report.TotalHours += summary.TotalHours
	}
	report.TotalHours = roundTenth(report.TotalHours)
	if len(report.Employees) > 0 {
		report.AverageHoursPerEmployee = roundTenth(report.TotalHours / float64(len(report.Employees)))
	}
	return report, nil
}

func (s *reportService) EmployeeMonthlyTotals(ctx context.Context, companyID, employeeID string, year int) ([]MonthlyTotal, error) {
	if _, err := s.employee(ctx, companyID, employeeID); err != nil {
		return nil, err
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	events, err := s.events.ListRange(ctx, companyID, employeeID, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}

	// 每个月单独配对，跨月的进出不计入
	byMonth := make(map[time.Month][]models.TimeTrackingEvent)
	for _, e := range events {
		m := e.Timestamp.UTC().Month()
		byMonth[m] = append(byMonth[m], e)
	}
	totals := make([]MonthlyTotal, 0, 12)
	for m := time.January; m <= time.December; m++ {
		totals = append(totals, MonthlyTotal{
			Month:      int(m),
			MonthName:  m.String(),
			TotalHours: ComputeWorkHours(byMonth[m]).TotalHours,
		})
	}
	return totals, nil
}

func (s *reportService) ExportMonthlyMetrics(ctx context.Context, companyID string, year int, month time.Month) ([]byte, error) {
	report, err := s.MonthlyMetrics(ctx, companyID, year, month)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(report.Employees))
	for _, m := range report.Employees {
		rows = append(rows, []interface{}{m.Name, m.Email, m.DaysWorked, m.TotalHours, m.AverageHoursPerDay})
	}
	sheet := fmt.Sprintf("%04d-%02d", year, int(month))
	return writeWorkbook(sheet, []interface{}{"Employee", "Email", "Days worked", "Total hours", "Average hours per day"}, rows)
}

func (s *reportService) ExportEmployeeMonthlyTotals(ctx context.Context, companyID, employeeID string, year int) ([]byte, error) {
	employee, err := s.employee(ctx, companyID, employeeID)
	if err != nil {
		return nil, err
	}
	totals, err := s.EmployeeMonthlyTotals(ctx, companyID, employeeID, year)
	if err != nil {
		return nil, err
	}
	rows := make([][]interface{}, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []interface{}{employee.Name, employee.Email, t.MonthName, t.TotalHours})
	}
	return writeWorkbook(fmt.Sprintf("%d", year), []interface{}{"Employee", "Email", "Month", "Total hours"}, rows)
}

func (s *reportService) employee(ctx context.Context, companyID, employeeID string) (*models.RegisteredEmployee, error) {
	employee, err := s.employees.FindByID(ctx, companyID, employeeID)
	if errors.Is(err, repositories.ErrRecordNotFound) {
		return nil, ErrEmployeeNotFound
	}
	return employee, err
}

// writeWorkbook 生成单工作表的 xlsx
func writeWorkbook(sheet string, header []interface{}, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
