package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/prodplan/prodplan/internal/config"
	"github.com/prodplan/prodplan/pkg/capacity"
	"github.com/prodplan/prodplan/pkg/ledger"
	"github.com/prodplan/prodplan/pkg/report"
	"github.com/prodplan/prodplan/pkg/schedule"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	params     capacity.Parameters
	days       int
	deliveries []string
	ledger     bool
}

func newGenerateCommand(cfg *config.Application) *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated schedule as CSV",
		Long: `Generates a production schedule from capacity parameters and deliveries and prints it as CSV.
No database is used. Deliveries are given as day=quantity pairs, for example --delivery 1=100,2=80.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			demand, err := parseDeliveries(opts.deliveries)
			if err != nil {
				return err
			}
			if opts.params.ShiftDurationHours <= 0 {
				opts.params.ShiftDurationHours = cfg.Planning.ShiftDurationHours
			}
			generator := schedule.NewGenerator(schedule.Config{
				HorizonDays:      cfg.Planning.HorizonDays,
				OvertimeEvery:    cfg.Planning.OvertimeEvery,
				OvertimeLeadDays: cfg.Planning.OvertimeLeadDays,
			})
			if opts.days > 0 {
				generator = generator.WithHorizon(opts.days)
			}

			result := generator.Generate(opts.params, demand)
			log.Debugf("Generated %d slots, remaining stock %d, pending shortfall %d",
				len(result.Slots), result.RemainingStock, result.PendingShortfall)

			renderer := report.NewCsvRenderer()
			var document string
			if opts.ledger {
				document, err = renderer.RenderLedger(ledger.Build(ledger.Input{
					InitialStock: opts.params.InitialStock,
					Days:         generator.HorizonDays(),
					Slots:        result.Slots,
				}))
			} else {
				document, err = renderer.RenderSchedule(result.Slots)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), document)
			return err
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.params.TimePerPiece, "time-per-piece", 0, "seconds needed for one piece")
	flags.IntVar(&opts.params.ManpowerCount, "manpower", 1, "operators per shift")
	flags.Float64Var(&opts.params.ShiftDurationHours, "shift-hours", 0, "hours per shift (default from configuration)")
	flags.Float64Var(&opts.params.PlanningHours, "planning-hours", 0, "planned working hours budget")
	flags.Float64Var(&opts.params.OvertimeHours, "overtime-hours", 0, "overtime hours budget")
	flags.IntVar(&opts.params.InitialStock, "initial-stock", 0, "material stock before day 1")
	flags.IntVar(&opts.days, "days", 0, "number of planned days (default from configuration)")
	flags.StringSliceVar(&opts.deliveries, "delivery", nil, "deliveries as day=quantity")
	flags.BoolVar(&opts.ledger, "ledger", false, "print the stock ledger instead of the schedule")
	_ = cmd.MarkFlagRequired("time-per-piece")
	return cmd
}

func parseDeliveries(values []string) (schedule.Demand, error) {
	demand := make(schedule.Demand, len(values))
	for _, value := range values {
		dayText, qtyText, ok := strings.Cut(value, "=")
		if !ok {
			return nil, fmt.Errorf("invalid delivery %q: expected day=quantity", value)
		}
		day, err := strconv.Atoi(strings.TrimSpace(dayText))
		if err != nil || day < 1 {
			return nil, fmt.Errorf("invalid delivery day %q", dayText)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyText))
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("invalid delivery quantity %q", qtyText)
		}
		demand[day] += qty
	}
	return demand, nil
}
