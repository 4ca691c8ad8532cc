package report

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/prodplan/prodplan/pkg/capacity"
	"github.com/prodplan/prodplan/pkg/ledger"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

type CsvRendererImpl struct {
}

func NewCsvRenderer() *CsvRendererImpl {
	return &CsvRendererImpl{}
}

var scheduleHeader = []string{
	"Day", "Shift", "Slot", "Delivery", "Pcs", "Planning pcs", "Planning hours",
	"Overtime pcs", "Overtime hours", "Actual pcs", "Status", "Notes",
}

// RenderSchedule writes one row per slot followed by a row of totals.
func (t *CsvRendererImpl) RenderSchedule(slots []schedule.Slot) (string, error) {
	data := make([][]string, 0, len(slots)+2)
	data = append(data, scheduleHeader)

	var total schedule.Slot
	for _, slot := range slots {
		data = append(data, []string{
			strconv.Itoa(slot.Day),
			string(slot.Shift),
			slot.Id,
			strconv.Itoa(slot.Delivery),
			strconv.Itoa(slot.Pcs),
			strconv.Itoa(slot.PlanningPcs),
			hoursToString(slot.PlanningHours),
			strconv.Itoa(slot.OvertimePcs),
			hoursToString(slot.OvertimeHours),
			strconv.Itoa(slot.ActualPcs),
			string(slot.Status),
			slot.Notes,
		})
		total.Delivery += slot.Delivery
		total.Pcs += slot.Pcs
		total.PlanningPcs += slot.PlanningPcs
		total.PlanningHours += slot.PlanningHours
		total.OvertimePcs += slot.OvertimePcs
		total.OvertimeHours += slot.OvertimeHours
		total.ActualPcs += slot.ActualPcs
	}

	data = append(data, []string{
		"Total", "", "",
		strconv.Itoa(total.Delivery),
		strconv.Itoa(total.Pcs),
		strconv.Itoa(total.PlanningPcs),
		hoursToString(total.PlanningHours),
		strconv.Itoa(total.OvertimePcs),
		hoursToString(total.OvertimeHours),
		strconv.Itoa(total.ActualPcs),
		"", "",
	})
	return write(data)
}

// RenderLedger writes one row per day and shift with every ledger series, followed by the inflow totals.
func (t *CsvRendererImpl) RenderLedger(l ledger.Ledger) (string, error) {
	data := make([][]string, 0, l.Days*2+3)
	data = append(data, []string{"Day", "Shift", "Theoretical", "In material stock", "Aktual in material stock", "Rencana"})
	for i := 0; i < l.Days*2; i++ {
		data = append(data, []string{
			strconv.Itoa(i/2 + 1),
			strconv.Itoa(i%2 + 1),
			valueAt(l.Theoretical, i),
			valueAt(l.InMaterialStock, i),
			valueAt(l.AktualInMaterialStock, i),
			valueAt(l.Rencana, i),
		})
	}
	data = append(data,
		[]string{"In material", "", "", strconv.Itoa(l.TotalInMaterial), "", ""},
		[]string{"Aktual in material", "", "", "", strconv.Itoa(l.TotalAktualInMaterial), ""},
	)
	return write(data)
}

func write(data [][]string) (string, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)
	if err := writer.WriteAll(data); err != nil {
		log.Errorf("Error writing to csv: %v", err)
		return "", err
	}
	return b.String(), nil
}

func valueAt(series []int, i int) string {
	if i >= len(series) {
		return ""
	}
	return strconv.Itoa(series[i])
}

func hoursToString(hours float64) string {
	return strconv.FormatFloat(capacity.DisplayHours(hours), 'f', 1, 64)
}
