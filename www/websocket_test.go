package www

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/angas/aircast-go/config"
	"github.com/angas/aircast-go/selection"
	"github.com/angas/aircast-go/www/chartjs"
	ws "github.com/gorilla/websocket"
)

func dial(t *testing.T, serverURL, query string) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws" + query
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dialing %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *ws.Conn) Message {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		t.Fatalf("setting read deadline: %v", err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("reading message: %v", err)
	}
	return msg
}

func sendCommand(t *testing.T, conn *ws.Conn, typ, value string) {
	t.Helper()
	if err := conn.WriteJSON(Command{Type: typ, Value: value}); err != nil {
		t.Fatalf("writing command: %v", err)
	}
}

func TestWebSocketSelection(t *testing.T) {
	ts := newTestServer(t, config.AppConfigApi{Port: 8080})
	conn := dial(t, ts.URL, "")

	initial := readMessage(t, conn)
	if initial.Type != MessageModel || initial.Model == nil {
		t.Fatalf("expected initial model, got %+v", initial)
	}
	if initial.Model.Selection.City != "delhi" || initial.Model.Selection.Pollutant != selection.PollutantNO2 {
		t.Errorf("unexpected initial selection %+v", initial.Model.Selection)
	}

	sendCommand(t, conn, "city", "mumbai")
	msg := readMessage(t, conn)
	if msg.Type != MessageModel || msg.Model.City.ID != "mumbai" {
		t.Fatalf("expected mumbai model, got %+v", msg)
	}
	if msg.Model.Current.AQI != 58 {
		t.Errorf("expected mumbai AQI 58, got %d", msg.Model.Current.AQI)
	}

	sendCommand(t, conn, "pollutant", "o3")
	msg = readMessage(t, conn)
	if msg.Type != MessageModel || msg.Model.Selection.Pollutant != selection.PollutantO3 {
		t.Fatalf("expected O3 model, got %+v", msg)
	}
	if msg.Model.Series[0].NO2 != nil || msg.Model.Series[0].O3 == nil {
		t.Errorf("expected only O3 values in series, got %+v", msg.Model.Series[0])
	}
}

func TestWebSocketRejectedCommandsKeepState(t *testing.T) {
	ts := newTestServer(t, config.AppConfigApi{Port: 8080})
	conn := dial(t, ts.URL, "?city=chennai")
	readMessage(t, conn)

	tests := []struct {
		name  string
		typ   string
		value string
		want  string
	}{
		{"unknown city", "city", "paris", "unknown city"},
		{"unknown pollutant", "pollutant", "CO", "CO"},
		{"unknown command", "zoom", "2", "unknown command type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sendCommand(t, conn, tt.typ, tt.value)
			msg := readMessage(t, conn)
			if msg.Type != MessageError {
				t.Fatalf("expected error message, got %+v", msg)
			}
			if !strings.Contains(msg.Error, tt.want) {
				t.Errorf("expected error to contain %q, got %q", tt.want, msg.Error)
			}
			if msg.Model == nil || msg.Model.Selection.City != "chennai" || msg.Model.Selection.Pollutant != selection.PollutantNO2 {
				t.Errorf("expected last valid selection to be kept, got %+v", msg.Model)
			}
		})
	}
}

func TestWebSocketRateLimit(t *testing.T) {
	rate := 0.001
	burst := 1
	ts := newTestServer(t, config.AppConfigApi{Port: 8080, WsCommandRate: &rate, WsCommandBurst: &burst})
	conn := dial(t, ts.URL, "")
	readMessage(t, conn)

	sendCommand(t, conn, "city", "bangalore")
	if msg := readMessage(t, conn); msg.Type != MessageModel {
		t.Fatalf("expected first command to be applied, got %+v", msg)
	}

	sendCommand(t, conn, "city", "mumbai")
	msg := readMessage(t, conn)
	if msg.Type != MessageError || msg.Error != errRateLimited.Error() {
		t.Fatalf("expected rate limit error, got %+v", msg)
	}
	if msg.Model.Selection.City != "bangalore" {
		t.Errorf("expected bangalore to be kept, got %s", msg.Model.Selection.City)
	}
}

func TestWebSocketRejectsInvalidInitialSelection(t *testing.T) {
	ts := newTestServer(t, config.AppConfigApi{Port: 8080})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?city=paris"

	_, resp, err := ws.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatalf("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response, got %+v", resp)
	}
}

// assertChartsMatchModel checks that the pushed charts were built from the
// pushed model and not from an earlier selection.
func assertChartsMatchModel(t *testing.T, msg Message) {
	t.Helper()
	if msg.Model == nil {
		t.Fatalf("expected a model in %+v", msg)
	}
	if len(msg.Charts) != 2 {
		t.Fatalf("expected forecast and weekly charts, got %d", len(msg.Charts))
	}

	m := msg.Model
	datasets := msg.Charts[0].Data.Datasets
	var expectedLabels []string
	if m.Selection.Pollutant.IncludesNO2() {
		expectedLabels = append(expectedLabels, "NO₂")
	}
	if m.Selection.Pollutant.IncludesO3() {
		expectedLabels = append(expectedLabels, "O₃")
	}
	if len(datasets) != len(expectedLabels) {
		t.Fatalf("expected %d datasets for %s, got %d", len(expectedLabels), m.Selection.Pollutant, len(datasets))
	}

	for i, ds := range datasets {
		if ds.Label != expectedLabels[i] {
			t.Errorf("expected dataset %s, got %s", expectedLabels[i], ds.Label)
		}
		for j, p := range m.Series {
			v := p.NO2
			if ds.Label == "O₃" {
				v = p.O3
			}
			if ds.Data[j] == nil || v == nil || *ds.Data[j] != *chartjs.FixedFloat64(*v, 2) {
				t.Fatalf("%s point %d does not match the %s series", ds.Label, j, m.Selection.City)
			}
		}
	}

	weekly := msg.Charts[1].Data.Datasets[0].Data
	for i, w := range m.Weekly {
		if *weekly[i] != *chartjs.FixedFloat64(w.AvgAQI, 1) {
			t.Fatalf("weekly average %d does not match the %s series", i, m.Selection.City)
		}
	}
}

func TestWebSocketChartsFollowSelection(t *testing.T) {
	ts := newTestServer(t, config.AppConfigApi{Port: 8080})
	conn := dial(t, ts.URL, "")
	assertChartsMatchModel(t, readMessage(t, conn))

	steps := []struct {
		typ   string
		value string
		city  string
	}{
		{"city", "mumbai", "mumbai"},
		{"city", "chennai", "chennai"},
		{"pollutant", "both", "chennai"},
		{"city", "bangalore", "bangalore"},
		{"pollutant", "O3", "bangalore"},
	}

	for _, s := range steps {
		sendCommand(t, conn, s.typ, s.value)
	}
	for _, s := range steps {
		msg := readMessage(t, conn)
		if msg.Type != MessageModel || msg.Model.Selection.City != s.city {
			t.Fatalf("expected %s model, got %+v", s.city, msg)
		}
		assertChartsMatchModel(t, msg)
	}

	sendCommand(t, conn, "city", "paris")
	msg := readMessage(t, conn)
	if msg.Type != MessageError {
		t.Fatalf("expected error message, got %+v", msg)
	}
	assertChartsMatchModel(t, msg)
}
