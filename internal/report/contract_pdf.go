package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lokercirebon/jobportal/internal/models"
	"github.com/phpdave11/gofpdf"
)

var workerColumns = []struct {
	title string
	width float64
}{
	{"No", 10},
	{"Nama", 45},
	{"Posisi", 40},
	{"Mulai", 25},
	{"Selesai", 25},
	{"Gaji (Rp)", 30},
	{"Status", 22},
}

// ContractSummary renders a contract registration and its workers as an A4 PDF.
func ContractSummary(reg *models.ContractRegistration, generatedAt time.Time) ([]byte, error) {
	if reg == nil {
		return nil, fmt.Errorf("report: registration is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Registrasi Kontrak "+reg.ID, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Ringkasan Registrasi Kontrak")
	pdf.Ln(12)

	company := "-"
	if reg.Company != nil {
		company = reg.Company.Name
	}
	pdf.SetFont("Arial", "", 11)
	for _, line := range [][2]string{
		{"ID Registrasi", reg.ID},
		{"Perusahaan", company},
		{"Status", string(reg.Status)},
		{"Diajukan", formatDate(reg.CreatedAt)},
		{"Diproses", formatDatePtr(reg.ProcessedAt)},
		{"Catatan Admin", deref(reg.AdminNotes)},
		{"Alasan Penolakan", deref(reg.RejectionReason)},
	} {
		pdf.CellFormat(45, 7, tr(line[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(": "+line[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range workerColumns {
		pdf.CellFormat(c.width, 8, c.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	var total int64
	for i, w := range reg.Workers {
		name := w.JobseekerID
		if w.Jobseeker != nil {
			name = w.Jobseeker.FullName()
		}
		cells := []string{
			strconv.Itoa(i + 1),
			name,
			w.JobTitle,
			formatDate(w.StartDate),
			formatDate(w.EndDate),
			formatRupiah(w.Salary),
			string(w.Status),
		}
		for j, c := range workerColumns {
			align := "L"
			if j == 0 || j == 6 {
				align = "C"
			}
			if j == 5 {
				align = "R"
			}
			pdf.CellFormat(c.width, 7, tr(truncate(cells[j], 28)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
		total += w.Salary
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 7, fmt.Sprintf("Jumlah pekerja: %d    Total gaji: Rp %s", len(reg.Workers), formatRupiah(total)))
	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(0, 6, "Dibuat pada "+generatedAt.UTC().Format("02-01-2006 15:04")+" UTC")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render contract summary: %w", err)
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("02-01-2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func deref(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "-"
	}
	return *s
}

// formatRupiah groups thousands with dots, e.g. 5000000 -> 5.000.000.
func formatRupiah(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
