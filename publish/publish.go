package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/angas/aircast-go/aqi"
	"github.com/angas/aircast-go/config"
	"github.com/angas/aircast-go/forecast"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const publishTimeout = 5 * time.Second

// Summary is the retained message for one city.
type Summary struct {
	City        string    `json:"city"`
	DisplayName string    `json:"displayName"`
	AQI         int       `json:"aqi"`
	Label       aqi.Label `json:"label"`
	Band        string    `json:"band"`
	NO2         float64   `json:"no2"`
	O3          float64   `json:"o3"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// mqttPublisher is the part of mqtt.Client used for publishing.
type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type Publisher struct {
	client   mqtt.Client
	pub      mqttPublisher
	logger   *slog.Logger
	provider forecast.Provider
	prefix   string
	now      func() time.Time
}

func New(logger *slog.Logger, cfg config.AppConfigPublish, provider forecast.Provider) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(cfg.GetClientID())
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected", slog.String("host", cfg.Host))
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	routeMqttLogs(logger.With("module", "mqtt"))

	client := mqtt.NewClient(opts)
	return &Publisher{
		client:   client,
		pub:      client,
		logger:   logger,
		provider: provider,
		prefix:   cfg.GetTopicPrefix(),
		now:      time.Now,
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("unable to connect to MQTT broker: %w", token.Error())
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.logger.Info("disconnecting MQTT client")
	p.client.Disconnect(250)
}

// Topic is where the summary for cityID is retained.
func Topic(prefix, cityID string) string {
	return fmt.Sprintf("%s/%s/aqi", prefix, cityID)
}

// Summaries classifies the current sample of every supported city.
func Summaries(provider forecast.Provider, now time.Time) ([]Summary, error) {
	cities := provider.SupportedCities()
	out := make([]Summary, 0, len(cities))
	for _, c := range cities {
		hourly, err := provider.HourlySeries(c.ID)
		if err != nil {
			return nil, err
		}
		if len(hourly) == 0 {
			return nil, fmt.Errorf("empty hourly series for %s", c.ID)
		}
		band, err := aqi.Classify(hourly[0].AQI)
		if err != nil {
			return nil, fmt.Errorf("classifying current sample for %s: %w", c.ID, err)
		}
		out = append(out, Summary{
			City:        c.ID,
			DisplayName: c.DisplayName,
			AQI:         hourly[0].AQI,
			Label:       band.Label,
			Band:        band.DisplayName,
			NO2:         hourly[0].NO2,
			O3:          hourly[0].O3,
			UpdatedAt:   now.UTC().Truncate(time.Second),
		})
	}
	return out, nil
}

// PublishAll publishes a retained summary per city. A failing city does not
// stop the others, all failures are returned joined.
func (p *Publisher) PublishAll(ctx context.Context) error {
	summaries, err := Summaries(p.provider, p.now())
	if err != nil {
		return err
	}

	var errs []error
	for _, s := range summaries {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := json.Marshal(s)
		if err != nil {
			errs = append(errs, fmt.Errorf("encoding summary for %s: %w", s.City, err))
			continue
		}
		topic := Topic(p.prefix, s.City)
		token := p.pub.Publish(topic, 1, true, payload)
		if !token.WaitTimeout(publishTimeout) {
			errs = append(errs, fmt.Errorf("timeout when publishing to %s", topic))
			continue
		}
		if token.Error() != nil {
			errs = append(errs, fmt.Errorf("error when publishing to %s: %w", topic, token.Error()))
			continue
		}
		p.logger.Debug("published summary", slog.String("topic", topic), slog.Int("aqi", s.AQI))
	}
	return errors.Join(errs...)
}
