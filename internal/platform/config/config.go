package config

import "os"

// Report captures batch pipeline configuration. Flags in cmd/report
// override these values so scheduled runs can stay env-driven.
type Report struct {
	InputsDir   string
	OutputsDir  string
	DatabaseURL string
}

// Dashboard captures dashboard server configuration.
type Dashboard struct {
	Addr        string
	Source      string // "history" or "live"
	InputsDir   string
	DatabaseURL string
}

// ReportFromEnv builds a Report config from environment variables so main
// stays lean.
func ReportFromEnv() Report {
	return Report{
		InputsDir:   getenv("KPI_INPUTS_DIR", "inputs"),
		OutputsDir:  getenv("KPI_OUTPUTS_DIR", "outputs"),
		DatabaseURL: os.Getenv("KPI_DB_URL"),
	}
}

// DashboardFromEnv builds a Dashboard config from environment variables.
func DashboardFromEnv() Dashboard {
	return Dashboard{
		Addr:        getenv("KPI_DASHBOARD_ADDR", ":8080"),
		Source:      getenv("KPI_DASHBOARD_SOURCE", "history"),
		InputsDir:   getenv("KPI_INPUTS_DIR", "inputs"),
		DatabaseURL: os.Getenv("KPI_DB_URL"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
