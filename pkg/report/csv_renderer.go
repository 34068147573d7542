package report

import (
	"bytes"
	"encoding/csv"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Renderer interface {
	Render(summary Summary) (string, error)
}

type CsvRendererImpl struct{}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

func (r *CsvRendererImpl) Render(summary Summary) (string, error) {
	data := make([][]string, 0, len(summary.Lines)+5)
	data = append(data, []string{"Type", "Category", "Planned", "Claimed", "Variance"})
	for _, line := range summary.Lines {
		data = append(data, []string{
			string(line.Kind),
			line.Category,
			money.Format(line.Planned),
			money.Format(line.Claimed),
			money.Format(line.Variance()),
		})
	}
	data = append(data,
		totalRow("Total income", summary.Planned.TotalIncome, summary.Claimed.TotalIncome),
		totalRow("Total expenditure", summary.Planned.TotalExpenditure, summary.Claimed.TotalExpenditure),
		totalRow("University overhead", summary.Planned.UniversityOverhead, summary.Claimed.UniversityOverhead),
		totalRow("Net balance", summary.Planned.NetBalance, summary.Claimed.NetBalance),
	)

	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			log.Errorf("Error writing to csv: %v", err)
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func totalRow(label string, planned, claimed decimal.Decimal) []string {
	return []string{"Total", label, money.Format(planned), money.Format(claimed), money.Format(claimed.Sub(planned))}
}
