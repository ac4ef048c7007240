package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campus-connect-backend/internal/domain"
	"campus-connect-backend/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// ExportColumns is the fixed column order of profile exports.
var ExportColumns = []string{
	"USER ID", "NAME", "EMAIL", "EDUCATION LEVEL", "EXPERIENCE RANGE",
	"STUDENT STATUS", "JOB TYPE", "SKILLS", "CITY", "COUNTRY",
	"LATEST INSTITUTION", "GRADUATION YEAR", "CURRENT COMPANY",
	"ACHIEVEMENTS", "CERTIFICATIONS", "HAS RESUME", "UPDATED AT",
}

type profileExportUsecase struct {
	profiles domain.StudentProfileUsecase
	now      func() time.Time
}

func NewProfileExportUsecase(profiles domain.StudentProfileUsecase) domain.ProfileExportUsecase {
	return &profileExportUsecase{profiles: profiles, now: time.Now}
}

func (u *profileExportUsecase) Export(ctx context.Context, format string) ([]byte, string, error) {
	var write func([][]string) ([]byte, error)
	ext := strings.ToLower(strings.TrimSpace(format))
	switch ext {
	case "xlsx", "":
		write, ext = exportExcel, "xlsx"
	case "csv":
		write = exportCSV
	default:
		return nil, "", apperror.BadRequest("Unsupported export format: " + format)
	}

	list, err := u.profiles.List(ctx)
	if err != nil {
		return nil, "", err
	}

	rows := make([][]string, 0, len(list))
	for i := range list {
		rows = append(rows, exportRow(&list[i]))
	}

	data, err := write(rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, fmt.Sprintf("student_profiles_%s.%s", u.now().Format("20060102_150405"), ext), nil
}

// formulaPrefixes start a formula in Excel, LibreOffice and Sheets.
const formulaPrefixes = "=+-@\t\r"

// sanitizeCell prefixes user text that a spreadsheet would evaluate as a
// formula, so it is shown as literal text.
func sanitizeCell(v string) string {
	if v != "" && strings.ContainsRune(formulaPrefixes, rune(v[0])) {
		return "'" + v
	}
	return v
}

// exportRow flattens an aggregate. Education and experience are already
// sorted newest first, so the first entry is the latest one.
func exportRow(p *domain.StudentProfileAggregate) []string {
	var city, country, institution, year, company string
	if p.Address != nil {
		city, country = p.Address.City, p.Address.Country
	}
	if len(p.Education) > 0 {
		institution = p.Education[0].Institution
		if p.Education[0].GraduationYear != nil {
			year = strconv.Itoa(*p.Education[0].GraduationYear)
		}
	}
	for _, e := range p.Experience {
		if e.IsCurrent {
			company = e.Company
			break
		}
	}

	achievements := make([]string, 0, len(p.Achievements))
	for _, a := range p.Achievements {
		achievements = append(achievements, a.Name)
	}
	certs := make([]string, 0, len(p.Certifications))
	for _, c := range p.Certifications {
		if c.IssuingBody != nil {
			certs = append(certs, fmt.Sprintf("%s (%s)", c.Name, *c.IssuingBody))
		} else {
			certs = append(certs, c.Name)
		}
	}

	hasResume := "NO"
	if p.ResumePath != nil {
		hasResume = "YES"
	}

	row := []string{
		p.UserID, p.Name, p.Email,
		string(p.EducationLevel), string(p.ExperienceRange),
		string(p.StudentStatus), string(p.JobType),
		strings.Join(p.Skills, ", "), city, country,
		institution, year, company,
		strings.Join(achievements, "; "), strings.Join(certs, "; "),
		hasResume, p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for i := range row {
		row[i] = sanitizeCell(row[i])
	}
	return row
}

func exportExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Student Profiles"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, col := range ExportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(ExportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range ExportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ExportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}
