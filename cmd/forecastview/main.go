package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/lox/forecastview/internal/api"
	"github.com/lox/forecastview/internal/chart"
	"github.com/lox/forecastview/internal/daily"
	"github.com/lox/forecastview/internal/models"
	"github.com/lox/forecastview/internal/owm"
	"github.com/lox/forecastview/internal/publish"
	"github.com/lox/forecastview/internal/render"
	"github.com/lox/forecastview/internal/report"
	"github.com/lox/forecastview/internal/service"
	"github.com/lox/forecastview/internal/store"
)

type Globals struct {
	EnvFile  kongdotenv.ENVFileConfig `kong:"optional,name=env-file,default='.env',help='Path to .env file'"`
	APIKey   string                   `name:"api-key" env:"OPENWEATHER_API_KEY" help:"OpenWeather API key."`
	BaseURL  string                   `name:"base-url" env:"OPENWEATHER_BASE_URL" default:"${base_url}" hidden:""`
	DB       string                   `name:"db" env:"FORECASTVIEW_DB" default:"data/forecastview.db" help:"Path to SQLite database."`
	Units    string                   `name:"units" env:"FORECASTVIEW_UNITS" default:"standard" help:"Temperature unit requested from the API (standard or metric)."`
	CacheTTL time.Duration            `name:"cache-ttl" env:"FORECASTVIEW_CACHE_TTL" default:"30m" help:"Reuse cached forecasts younger than this."`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP server."`
	Days    DaysCmd    `cmd:"" help:"Print the daily overview for a location."`
	Chart   ChartCmd   `cmd:"" help:"Write one chart for a day to a file."`
	Publish PublishCmd `cmd:"" help:"Render all charts for a day and upload them over FTP."`
}

// app holds the resources shared by every command.
type app struct {
	db         *sql.DB
	store      *store.Store
	client     *owm.Client
	forecaster *service.Forecaster
}

func (g *Globals) open() (*app, error) {
	unit, err := models.ParseTemperatureUnit(g.Units)
	if err != nil {
		return nil, err
	}
	if g.APIKey == "" {
		return nil, fmt.Errorf("%w: set OPENWEATHER_API_KEY or --api-key", owm.ErrNoAPIKey)
	}

	if dir := filepath.Dir(g.DB); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", g.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db, time.UTC)
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	client := owm.NewClient(g.APIKey, owm.WithBaseURL(g.BaseURL), owm.WithUnits(unit))
	return &app{
		db:         db,
		store:      st,
		client:     client,
		forecaster: service.NewForecaster(client, st, g.CacheTTL),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// selectDay picks the summary for date, or the first forecast day when date
// is empty.
func selectDay(days []models.DaySummary, date string) (models.DaySummary, error) {
	if len(days) == 0 {
		return models.DaySummary{}, service.ErrDayNotFound
	}
	if date == "" {
		return days[0], nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return models.DaySummary{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	day, ok := daily.Find(days, t)
	if !ok {
		return models.DaySummary{}, fmt.Errorf("%w: %s", service.ErrDayNotFound, date)
	}
	return day, nil
}

type ServeCmd struct {
	Port            string        `env:"PORT" default:"8080" help:"HTTP server port."`
	Watch           []string      `env:"FORECASTVIEW_WATCH" sep:";" help:"Locations to keep cached, as city[,state][,country]; separate several with ';'."`
	RefreshInterval time.Duration `name:"refresh-interval" default:"1h" help:"How often watched locations are refreshed."`
	Retention       time.Duration `default:"168h" help:"How long fetched payloads are kept."`
	ChartTTL        time.Duration `name:"chart-ttl" default:"10m" help:"How long rendered charts stay in memory."`
	NoPoll          bool          `name:"no-poll" help:"Disable background refresh and cleanup."`
}

func (c *ServeCmd) Run(g *Globals) error {
	if !c.NoPoll && c.RefreshInterval <= 0 {
		return fmt.Errorf("--refresh-interval must be positive, got %s", c.RefreshInterval)
	}
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !c.NoPoll {
		watch := make([]service.Query, 0, len(c.Watch))
		for _, w := range c.Watch {
			watch = append(watch, service.ParseQuery(w))
		}
		scheduler := service.NewScheduler(a.forecaster, a.store, watch, c.RefreshInterval, c.Retention)
		go scheduler.Run(ctx)
	} else {
		log.Println("polling disabled (--no-poll)")
	}

	server := api.NewServer(a.forecaster, a.store, c.Port, c.ChartTTL)
	log.Printf("starting server on :%s", c.Port)
	return server.Run(ctx)
}

type DaysCmd struct {
	Location string `arg:"" help:"Location as city[,state][,country]."`
}

func (c *DaysCmd) Run(g *Globals) error {
	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	fc, days, err := a.forecaster.Days(context.Background(), service.ParseQuery(c.Location))
	if err != nil {
		return err
	}

	fmt.Printf("%s, %s (fetched %s)\n\n", fc.Location.Name, fc.Location.Country, fc.FetchedAt.Format(time.RFC1123))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCONDITIONS\tTEMPERATURE\tRAIN\tHUMIDITY\tPRESSURE\tVISIBILITY")
	for _, row := range report.OverviewRows(days, fc.Unit) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n", row.Label, row.Condition, row.Temperature, row.Rain, row.Humidity, row.Pressure, row.Visibility)
	}
	return tw.Flush()
}

type ChartCmd struct {
	Location string `arg:"" help:"Location as city[,state][,country]."`
	Metric   string `arg:"" enum:"temperature,wind,precipitation,pressure" help:"Chart to draw."`
	Date     string `help:"Day to chart (YYYY-MM-DD); defaults to the first forecast day."`
	Format   string `default:"svg" enum:"svg,png" help:"Image format."`
	Output   string `short:"o" help:"Output file; defaults to <date>-<metric>.<format>."`
}

func (c *ChartCmd) Run(g *Globals) error {
	m, err := chart.ParseMetric(c.Metric)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	fc, days, err := a.forecaster.Days(context.Background(), service.ParseQuery(c.Location))
	if err != nil {
		return err
	}
	day, err := selectDay(days, c.Date)
	if err != nil {
		return err
	}

	data, err := render.Chart(m, day.Observations, fc.Unit, format)
	if err != nil {
		return err
	}
	out := c.Output
	if out == "" {
		out = chartFileName(day, m, format)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	log.Printf("wrote %s (%d bytes)", out, len(data))
	return nil
}

func chartFileName(day models.DaySummary, m chart.Metric, f render.Format) string {
	return fmt.Sprintf("%s-%s.%s", daily.DateKey(day.Date), m, f)
}

type PublishCmd struct {
	Location    string        `arg:"" help:"Location as city[,state][,country]."`
	Date        string        `help:"Day to publish (YYYY-MM-DD); defaults to the first forecast day."`
	Format      string        `default:"svg" enum:"svg,png" help:"Image format."`
	FTPAddr     string        `name:"ftp-addr" env:"FTP_ADDR" required:"" help:"FTP server host:port."`
	FTPUser     string        `name:"ftp-user" env:"FTP_USER" help:"FTP user; anonymous when empty."`
	FTPPassword string        `name:"ftp-password" env:"FTP_PASSWORD" help:"FTP password."`
	FTPDir      string        `name:"ftp-dir" env:"FTP_DIR" help:"Remote directory."`
	Timeout     time.Duration `default:"30s" help:"FTP dial timeout."`
}

func (c *PublishCmd) Run(g *Globals) error {
	format, err := render.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	a, err := g.open()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fc, days, err := a.forecaster.Days(ctx, service.ParseQuery(c.Location))
	if err != nil {
		return err
	}
	day, err := selectDay(days, c.Date)
	if err != nil {
		return err
	}

	files := make([]publish.File, 0, len(chart.Metrics))
	for _, m := range chart.Metrics {
		data, err := render.Chart(m, day.Observations, fc.Unit, format)
		if err != nil {
			return fmt.Errorf("render %s: %w", m, err)
		}
		files = append(files, publish.File{Name: chartFileName(day, m, format), Data: data})
	}

	uploader := &publish.FTP{
		Addr:     c.FTPAddr,
		User:     c.FTPUser,
		Password: c.FTPPassword,
		Dir:      c.FTPDir,
		Timeout:  c.Timeout,
	}
	return uploader.UploadAll(ctx, files)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("forecastview"),
		kong.Description("5-day forecasts as daily summaries and charts."),
		kong.UsageOnError(),
		kong.Vars{"base_url": owm.DefaultBaseURL},
		kong.Bind(&cli.Globals),
	)
	if err := ctx.Run(); err != nil {
		log.Fatalf("%s: %v", ctx.Command(), err)
	}
}
