// Package reports genera el reporte PDF por mascota (inventario,
// pesos y feedings de una ventana de fechas).
package reports

import (
	"bytes"
	"fmt"
	"time"

	"cat-feeder/internal/domain/feedings"
	"cat-feeder/internal/domain/inventory"
	"cat-feeder/internal/domain/pets"
	"cat-feeder/internal/domain/weights"

	"github.com/go-pdf/fpdf"
)

type Input struct {
	Pet       pets.Pet
	Feedings  []feedings.FeedingEvent
	Weights   []weights.Entry
	Inventory *inventory.Item
	Start     time.Time
	End       time.Time // exclusivo
}

const tsFormat = "2006-01-02T15:04"

// BuildPetReport arma el PDF en memoria. Una página carta, texto plano
// por secciones; fpdf pagina solo cuando una lista se pasa del margen.
func BuildPetReport(in Input) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(true, 80)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 18, fmt.Sprintf("%s Report", in.Pet.Name), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	endDisplay := in.End.AddDate(0, 0, -1)
	pdf.CellFormat(0, 16, fmt.Sprintf("Date range: %s to %s",
		in.Start.Format("2006-01-02"), endDisplay.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 16, fmt.Sprintf("Generated: %s UTC",
		time.Now().UTC().Format(tsFormat)), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	sectionTitle(pdf, "Inventory")
	if in.Inventory != nil {
		line(pdf, fmt.Sprintf("%s - %d sachets (%dg remaining)",
			in.Inventory.FoodName, in.Inventory.SachetCount, in.Inventory.RemainingGrams))
	} else {
		line(pdf, "No inventory set.")
	}
	pdf.Ln(8)

	sectionTitle(pdf, "Weight Entries")
	if len(in.Weights) == 0 {
		line(pdf, "No weight entries.")
	}
	for _, e := range in.Weights {
		line(pdf, fmt.Sprintf("%s - %gkg", e.RecordedAt.Format(tsFormat), e.WeightKg))
	}
	pdf.Ln(8)

	sectionTitle(pdf, "Feedings")
	if len(in.Feedings) == 0 {
		line(pdf, "No feedings.")
	}
	for _, e := range in.Feedings {
		diet := ""
		if e.DietType != "" {
			diet = fmt.Sprintf(" (%s)", e.DietType)
		}
		line(pdf, fmt.Sprintf("%s - %dg%s", e.FedAt.Format(tsFormat), e.AmountGrams, diet))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 14, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
}

func line(pdf *fpdf.Fpdf, s string) {
	pdf.CellFormat(0, 14, s, "", 1, "L", false, 0, "")
}
