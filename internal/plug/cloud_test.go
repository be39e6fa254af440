package plug

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chargectl/internal/config"
)

// fakeCloud emulates the TP-Link cloud endpoint plus one relay device.
type fakeCloud struct {
	t *testing.T

	token      string
	relayState int
	relayKnown bool // when false, sysinfo omits relay_state
	alias      string

	logins       int
	relayCmds    []int
	failSetRelay bool
	expireToken  bool // report token-expired once on the next passthrough
}

func (f *fakeCloud) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			f.t.Fatalf("fake cloud: bad request body: %v", err)
		}

		switch req.Method {
		case "login":
			f.logins++
			f.token = fmt.Sprintf("tok-%d", f.logins)
			fmt.Fprintf(w, `{"error_code":0,"result":{"token":%q}}`, f.token)
		case "getDeviceList":
			f.requireToken(w, r)
			fmt.Fprintf(w, `{"error_code":0,"result":{"deviceList":[`+
				`{"deviceId":"dev-1","alias":%q,"deviceModel":"HS110(EU)","deviceType":"IOT.SMARTPLUGSWITCH","status":1}`+
				`]}}`, f.alias)
		case "passthrough":
			if f.expireToken {
				f.expireToken = false
				fmt.Fprint(w, `{"error_code":-20651,"msg":"Token expired"}`)
				return
			}
			f.requireToken(w, r)
			var p struct {
				DeviceID    string `json:"deviceId"`
				RequestData string `json:"requestData"`
			}
			if err := json.Unmarshal(req.Params, &p); err != nil {
				f.t.Fatalf("fake cloud: bad passthrough params: %v", err)
			}
			f.respondDevice(w, p.RequestData)
		default:
			f.t.Fatalf("fake cloud: unexpected method %q", req.Method)
		}
	}
}

func (f *fakeCloud) requireToken(w http.ResponseWriter, r *http.Request) {
	if got := r.URL.Query().Get("token"); got != f.token {
		f.t.Errorf("fake cloud: wrong token %q, want %q", got, f.token)
	}
}

func (f *fakeCloud) respondDevice(w http.ResponseWriter, requestData string) {
	switch {
	case strings.Contains(requestData, "get_sysinfo"):
		relay := ""
		if f.relayKnown {
			relay = fmt.Sprintf(`"relay_state":%d,`, f.relayState)
		}
		data := fmt.Sprintf(`{"system":{"get_sysinfo":{"alias":%q,"model":"HS110(EU)","deviceId":"dev-1","hw_ver":"2.0","sw_ver":"1.5.4",%s"err_code":0}}}`, f.alias, relay)
		writePassthrough(w, data)
	case strings.Contains(requestData, "set_relay_state"):
		var cmd struct {
			System struct {
				SetRelayState struct {
					State int `json:"state"`
				} `json:"set_relay_state"`
			} `json:"system"`
		}
		if err := json.Unmarshal([]byte(requestData), &cmd); err != nil {
			f.t.Fatalf("fake cloud: bad relay command: %v", err)
		}
		f.relayCmds = append(f.relayCmds, cmd.System.SetRelayState.State)
		if !f.failSetRelay {
			f.relayState = cmd.System.SetRelayState.State
		}
		writePassthrough(w, `{"system":{"set_relay_state":{"err_code":0}}}`)
	default:
		f.t.Fatalf("fake cloud: unexpected device request %q", requestData)
	}
}

func writePassthrough(w http.ResponseWriter, deviceJSON string) {
	resp := map[string]any{
		"error_code": 0,
		"result":     map[string]string{"responseData": deviceJSON},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestController(t *testing.T, f *fakeCloud, policy string) (*CloudController, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	ctl := NewCloudController(
		config.CloudConfig{
			Email:    "user@example.com",
			Password: "secret",
			BaseURL:  srv.URL,
			Timeout:  5 * time.Second,
		},
		config.ChargingConfig{
			SettleDelay:      0, // no reason to wait against a fake
			UnverifiedPolicy: policy,
		},
	)
	return ctl, srv
}

func TestCloudController_StatusMapsRelayState(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: true, relayState: 1}
	ctl, _ := newTestController(t, f, config.PolicyOptimistic)

	st, err := ctl.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StateOn {
		t.Errorf("state: want ON, got %s", st)
	}
	if f.logins != 1 {
		t.Errorf("logins: want 1, got %d", f.logins)
	}

	f.relayState = 0
	st, err = ctl.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StateOff {
		t.Errorf("state: want OFF, got %s", st)
	}
	// Token and device resolution are cached across calls.
	if f.logins != 1 {
		t.Errorf("logins after second status: want 1, got %d", f.logins)
	}
}

func TestCloudController_TurnOnVerified(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: true, relayState: 0}
	ctl, _ := newTestController(t, f, config.PolicyOptimistic)

	ok, err := ctl.TurnOn(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected verified success")
	}
	if len(f.relayCmds) != 1 || f.relayCmds[0] != 1 {
		t.Errorf("relay commands: want [1], got %v", f.relayCmds)
	}
}

func TestCloudController_TurnOffVerifiedFailure(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: true, relayState: 1, failSetRelay: true}
	ctl, _ := newTestController(t, f, config.PolicyOptimistic)

	ok, err := ctl.TurnOff(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected verified failure: relay still on")
	}
}

func TestCloudController_UnverifiablePolicies(t *testing.T) {
	cases := []struct {
		policy string
		want   bool
	}{
		{policy: config.PolicyOptimistic, want: true},
		{policy: config.PolicyStrict, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.policy, func(t *testing.T) {
			f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: false}
			ctl, _ := newTestController(t, f, tc.policy)

			ok, err := ctl.TurnOn(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tc.want {
				t.Errorf("policy %s: want %v, got %v", tc.policy, tc.want, ok)
			}
		})
	}
}

func TestCloudController_ReloginOnExpiredToken(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: true, relayState: 1}
	ctl, _ := newTestController(t, f, config.PolicyOptimistic)

	// Prime the session, then expire it.
	if _, err := ctl.Status(context.Background()); err != nil {
		t.Fatalf("priming status: %v", err)
	}
	f.expireToken = true

	st, err := ctl.Status(context.Background())
	if err != nil {
		t.Fatalf("unexpected error after token expiry: %v", err)
	}
	if st != StateOn {
		t.Errorf("state: want ON, got %s", st)
	}
	if f.logins != 2 {
		t.Errorf("logins: want 2 (relogin), got %d", f.logins)
	}
}

func TestCloudController_DeviceAliasNotFound(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Bedroom Lamp", relayKnown: true}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	ctl := NewCloudController(
		config.CloudConfig{Email: "u", Password: "p", DeviceAlias: "Laptop Charger", BaseURL: srv.URL, Timeout: 5 * time.Second},
		config.ChargingConfig{UnverifiedPolicy: config.PolicyOptimistic},
	)
	if _, err := ctl.Status(context.Background()); err == nil {
		t.Fatalf("expected device-not-found error, got nil")
	}
}

func TestCloudController_SettleDelayObservesCancellation(t *testing.T) {
	f := &fakeCloud{t: t, alias: "Laptop Charger", relayKnown: true, relayState: 0}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	ctl := NewCloudController(
		config.CloudConfig{Email: "u", Password: "p", BaseURL: srv.URL, Timeout: 5 * time.Second},
		config.ChargingConfig{SettleDelay: time.Minute, UnverifiedPolicy: config.PolicyOptimistic},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := ctl.TurnOn(ctx)
		done <- err
	}()
	// Give the command time to reach the settle wait, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected context error from interrupted settle wait")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("TurnOn did not return after cancellation")
	}
}
