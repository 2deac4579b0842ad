package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"github.com/avora-app/reservations/internal/mailer"
)

type ServerConfig struct {
	Port       string
	StaffToken string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) *ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
	}

	token := cfg.GetString("server.staff_token")
	if token == "" {
		log.Warn().Msg("server.staff_token is empty, moderation endpoints will reject all requests")
	}

	log.Info().Str("port", port).Msg("server config built")
	return &ServerConfig{Port: port, StaffToken: token}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	masterDSN := cfg.GetString("database.master_dsn")
	if masterDSN == "" {
		return "", nil, nil, fmt.Errorf("database.master_dsn is required")
	}
	slaveDSNs := cfg.GetStringSlice("database.slave_dsns")

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("database.conn_max_lifetime_seconds")) * time.Second,
	}
	if opts.MaxOpenConns == 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 5
	}

	log.Info().Int("slaves", len(slaveDSNs)).Msg("database config built")
	return masterDSN, slaveDSNs, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return nil, fmt.Errorf("rabbit.url is required")
	}

	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "reservations.expiry"
	}
	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "reservations.expiry.queue"
	}

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbit config built")
	return &RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) (mailer.Config, error) {
	m := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetString("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
	}
	if m.Host == "" || m.From == "" {
		return m, fmt.Errorf("smtp.host and smtp.from are required")
	}
	if m.Port == "" {
		m.Port = "587"
	}

	log.Info().Str("host", m.Host).Str("from", m.From).Msg("smtp config built")
	return m, nil
}
