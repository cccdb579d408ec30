package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sarchlab/wlanbench/analysis"
	"github.com/sarchlab/wlanbench/datarecording"
	"github.com/sarchlab/wlanbench/monitoring"
	"github.com/sarchlab/wlanbench/scenario"
	"github.com/sarchlab/wlanbench/sim"
	"github.com/sarchlab/wlanbench/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one comparison and print the flow statistics.",
	Long: `Run builds the network, runs the traffic between the client ` +
		`start and stop times, and prints one block per flow followed by ` +
		`the cumulative throughput.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadRunConfig(cmd)
		if err != nil {
			return err
		}

		return runScenario(cmd, cfg)
	},
}

func init() {
	d := scenario.DefaultConfig()
	f := runCmd.Flags()

	f.String("config", "", "YAML file that overrides the default parameters")

	f.Int("sta-count", d.StationCount, "Set number of Wifi STA Nodes")
	f.Int("active-sta-count", d.ActiveCount,
		"Set number of active Wifi STA Nodes")
	f.String("wifi-data-rate", d.DataMode, "Set Data Rate for WIFI Standard")
	f.String("client-data-rate", d.ClientDataRate, "Set Data Rate for Client")
	f.Bool("rts-cts", d.RTSCTS, "Set RTS/CTS")

	f.String("standard", d.Standard, "802.11 standard, see the modes command")
	f.String("rate-manager", d.RateManager, "constant or ideal")
	f.String("placement", d.Placement, "table or ring")
	f.String("stagger", d.Stagger, "uniform or per-station")
	f.Int64("seed", d.Seed, "seed of the backoff random number generator")
	f.String("id-generator", "sequential",
		"sequential for reproducible ids, parallel for globally unique ids")

	f.String("output", "", "SQLite file (without extension) to record into")
	f.Float64("queue-period", 0.1,
		"seconds per recorded queue level, 0 for one value per device")
	f.String("clickhouse", "", "ClickHouse address to record into")
	f.String("clickhouse-database", "default", "ClickHouse database")
	f.String("trace", "", "SQLite file (without extension) for frame exchanges")
	f.String("pcap", "", "pcap file for delivered packets")

	f.Bool("log-events", false, "print every event to stderr")

	f.Bool("monitor", false, "serve the monitoring page while running")
	f.Int("monitor-port", 0, "port of the monitoring page, random if 0")
	f.Bool("open-browser", false, "open the monitoring page in a browser")

	rootCmd.AddCommand(runCmd)
}

func loadRunConfig(cmd *cobra.Command) (scenario.Config, error) {
	f := cmd.Flags()

	cfg := scenario.DefaultConfig()
	if path, _ := f.GetString("config"); path != "" {
		var err error

		cfg, err = scenario.LoadConfig(path)
		if err != nil {
			return cfg, err
		}
	}

	if f.Changed("sta-count") {
		cfg.StationCount, _ = f.GetInt("sta-count")
	}

	if f.Changed("active-sta-count") {
		cfg.ActiveCount, _ = f.GetInt("active-sta-count")
	}

	if f.Changed("wifi-data-rate") {
		cfg.DataMode, _ = f.GetString("wifi-data-rate")
		cfg.ControlMode = cfg.DataMode
	}

	if f.Changed("client-data-rate") {
		cfg.ClientDataRate, _ = f.GetString("client-data-rate")
	}

	if f.Changed("rts-cts") {
		cfg.RTSCTS, _ = f.GetBool("rts-cts")
	}

	if f.Changed("standard") {
		cfg.Standard, _ = f.GetString("standard")
	}

	if f.Changed("rate-manager") {
		cfg.RateManager, _ = f.GetString("rate-manager")
	}

	if f.Changed("placement") {
		cfg.Placement, _ = f.GetString("placement")
	}

	if f.Changed("stagger") {
		cfg.Stagger, _ = f.GetString("stagger")
	}

	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}

	return cfg, cfg.Validate()
}

func runScenario(cmd *cobra.Command, cfg scenario.Config) error {
	f := cmd.Flags()
	if err := selectIDGenerator(f); err != nil {
		return err
	}

	engine := sim.NewSerialEngine()
	if logEvents, _ := f.GetBool("log-events"); logEvents {
		engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	builder := scenario.MakeBuilder().WithConfig(cfg).WithEngine(engine)

	var recorders, closers []datarecording.DataRecorder

	defer func() {
		for _, r := range closers {
			if err := r.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing recorder: %v\n", err)
			}
		}
	}()

	var (
		execRecorder *datarecording.ExecRecorder
		output       datarecording.DataRecorder
	)

	if path, _ := f.GetString("output"); path != "" {
		w, err := datarecording.New(path)
		if err != nil {
			return err
		}

		output = w
		recorders = append(recorders, w)
		closers = append(closers, w)
		execRecorder = datarecording.NewExecRecorder(w)
		execRecorder.Start()
		execRecorder.Record("Config", cfg.Dump())
	}

	if addr, _ := f.GetString("clickhouse"); addr != "" {
		database, _ := f.GetString("clickhouse-database")

		r, err := datarecording.NewClickHouseRecorder(
			datarecording.ClickHouseOptions{Addr: addr, Database: database})
		if err != nil {
			return err
		}

		recorders = append(recorders, r)
		closers = append(closers, r)
	}

	var dbTracer *tracing.DBTracer

	if path, _ := f.GetString("trace"); path != "" {
		w, err := datarecording.New(path)
		if err != nil {
			return err
		}

		closers = append(closers, w)
		dbTracer = tracing.NewDBTracer(engine, w)
		builder = builder.WithTracer(dbTracer)
	}

	if path, _ := f.GetString("pcap"); path != "" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()

		builder = builder.WithPcapWriter(file)
	}

	s, err := builder.Build()
	if err != nil {
		return err
	}

	if err := startMonitor(cmd, s); err != nil {
		return err
	}

	var queues []*analysis.QueueAnalyzer
	if output != nil {
		period, _ := f.GetFloat64("queue-period")
		queues = attachQueueAnalyzers(s, output, sim.VTimeInSec(period))
	}

	result, err := s.Run()
	if err != nil {
		return err
	}

	for _, q := range queues {
		q.Summarize()
	}

	if dbTracer != nil {
		dbTracer.Terminate()
	}

	for _, r := range recorders {
		scenario.RecordResult(r, result)
	}

	if execRecorder != nil {
		execRecorder.End()
	}

	return result.WriteReport(cmd.OutOrStdout())
}

func startMonitor(cmd *cobra.Command, s *scenario.Scenario) error {
	f := cmd.Flags()
	if enabled, _ := f.GetBool("monitor"); !enabled {
		return nil
	}

	port, _ := f.GetInt("monitor-port")

	m := monitoring.NewMonitor().WithPortNumber(port)
	m.RegisterEngine(s.Engine())
	m.RegisterFlowSource(s.Monitor())

	for _, c := range s.Components() {
		m.RegisterComponent(c)
	}

	progress := m.NewSimTimeProgress(s.Name(), s.Window().Stop)
	s.Engine().AcceptHook(progress)
	s.Engine().RegisterSimulationEndHandler(progress)

	m.StartServer()

	if open, _ := f.GetBool("open-browser"); open {
		return m.OpenInBrowser()
	}

	return nil
}

func attachQueueAnalyzers(
	s *scenario.Scenario,
	recorder datarecording.DataRecorder,
	period sim.VTimeInSec,
) []*analysis.QueueAnalyzer {
	logger := analysis.NewRecorderLogger(recorder)
	builder := analysis.MakeQueueAnalyzerBuilder().
		WithPerfLogger(logger).
		WithTimeTeller(s.Engine()).
		WithPeriod(period)

	var analyzers []*analysis.QueueAnalyzer
	for _, d := range s.Devices() {
		analyzers = append(analyzers, builder.WithBuffer(d.Queue()).Build())
	}

	return analyzers
}

func selectIDGenerator(f *pflag.FlagSet) error {
	name, _ := f.GetString("id-generator")

	switch name {
	case "sequential":
		sim.UseSequentialIDGenerator()
	case "parallel":
		sim.UseParallelIDGenerator()
	default:
		return fmt.Errorf("unknown id generator %q", name)
	}

	return nil
}
