package plug

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"chargectl/internal/config"

	"github.com/google/uuid"
)

// Kasa cloud API error codes we react to.
const (
	cloudErrCodeOK           = 0
	cloudErrCodeTokenExpired = -20651
)

var (
	// ErrDeviceNotFound reports that no (matching) smart plug is registered
	// on the cloud account.
	ErrDeviceNotFound = errors.New("smart plug not found on cloud account")
)

// CloudController drives a single Kasa smart plug via the TP-Link cloud.
// Commands are verified by re-reading the relay state after a settle delay;
// an inconclusive verification is resolved by the configured policy.
type CloudController struct {
	cfg  config.CloudConfig
	http *http.Client

	settleDelay      time.Duration
	unverifiedPolicy string

	// terminalUUID identifies this client session to the cloud.
	termID string

	mu          sync.Mutex
	token       string
	deviceID    string
	passthruURL string
}

// NewCloudController builds a controller from the cloud and charging config.
// No network traffic happens until the first call.
func NewCloudController(cloud config.CloudConfig, charging config.ChargingConfig) *CloudController {
	return &CloudController{
		cfg:              cloud,
		http:             &http.Client{Timeout: cloud.Timeout},
		settleDelay:      charging.SettleDelay,
		unverifiedPolicy: charging.UnverifiedPolicy,
		termID:           uuid.NewString(),
	}
}

// ---- wire types ----

type cloudRequest struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type cloudResponse struct {
	ErrorCode int             `json:"error_code"`
	Message   string          `json:"msg,omitempty"`
	Result    json.RawMessage `json:"result,omitempty"`
}

type loginParams struct {
	AppType       string `json:"appType"`
	CloudUserName string `json:"cloudUserName"`
	CloudPassword string `json:"cloudPassword"`
	TerminalUUID  string `json:"terminalUUID"`
}

type loginResult struct {
	Token string `json:"token"`
}

type deviceListResult struct {
	DeviceList []cloudDevice `json:"deviceList"`
}

type cloudDevice struct {
	DeviceID     string `json:"deviceId"`
	Alias        string `json:"alias"`
	DeviceModel  string `json:"deviceModel"`
	DeviceType   string `json:"deviceType"`
	Status       int    `json:"status"`
	AppServerURL string `json:"appServerUrl"`
}

type passthroughParams struct {
	DeviceID    string `json:"deviceId"`
	RequestData string `json:"requestData"`
}

type passthroughResult struct {
	ResponseData string `json:"responseData"`
}

// sysInfo mirrors the device-side {"system":{"get_sysinfo":{...}}} payload.
type sysInfo struct {
	System struct {
		GetSysinfo struct {
			Alias      string `json:"alias"`
			Model      string `json:"model"`
			DeviceID   string `json:"deviceId"`
			HwVer      string `json:"hw_ver"`
			SwVer      string `json:"sw_ver"`
			RelayState *int   `json:"relay_state"`
			ErrCode    int    `json:"err_code"`
		} `json:"get_sysinfo"`
	} `json:"system"`
}

type relayAck struct {
	System struct {
		SetRelayState struct {
			ErrCode int `json:"err_code"`
		} `json:"set_relay_state"`
	} `json:"system"`
}

// ---- Controller implementation ----

func (c *CloudController) Status(ctx context.Context) (State, error) {
	info, err := c.readSysinfo(ctx)
	if err != nil {
		return StateUnknown, err
	}
	return info.State, nil
}

func (c *CloudController) Info(ctx context.Context) (DeviceInfo, error) {
	return c.readSysinfo(ctx)
}

func (c *CloudController) TurnOn(ctx context.Context) (bool, error) {
	return c.setRelay(ctx, 1, StateOn)
}

func (c *CloudController) TurnOff(ctx context.Context) (bool, error) {
	return c.setRelay(ctx, 0, StateOff)
}

// setRelay issues the relay command, waits the settle delay and re-reads the
// state to confirm the command took effect.
func (c *CloudController) setRelay(ctx context.Context, relay int, want State) (bool, error) {
	cmd := fmt.Sprintf(`{"system":{"set_relay_state":{"state":%d}}}`, relay)
	raw, err := c.passthrough(ctx, cmd)
	if err != nil {
		return false, err
	}
	var ack relayAck
	if err := json.Unmarshal(raw, &ack); err == nil && ack.System.SetRelayState.ErrCode != 0 {
		return false, fmt.Errorf("device rejected relay command: err_code=%d", ack.System.SetRelayState.ErrCode)
	}

	// Settle before verification; cancellation must interrupt the wait.
	if err := sleepOrDone(ctx, c.settleDelay); err != nil {
		return false, err
	}

	got, err := c.Status(ctx)
	if err != nil || got == StateUnknown {
		// The command went through but its effect is unknowable.
		return c.unverifiedPolicy == config.PolicyOptimistic, nil
	}
	return got == want, nil
}

func (c *CloudController) readSysinfo(ctx context.Context) (DeviceInfo, error) {
	raw, err := c.passthrough(ctx, `{"system":{"get_sysinfo":{}}}`)
	if err != nil {
		return DeviceInfo{}, err
	}
	var si sysInfo
	if err := json.Unmarshal(raw, &si); err != nil {
		return DeviceInfo{}, fmt.Errorf("parse sysinfo: %w", err)
	}
	gs := si.System.GetSysinfo

	state := StateUnknown
	if gs.RelayState != nil {
		if *gs.RelayState == 1 {
			state = StateOn
		} else {
			state = StateOff
		}
	}
	return DeviceInfo{
		Alias:           gs.Alias,
		Model:           gs.Model,
		DeviceID:        gs.DeviceID,
		HardwareVersion: gs.HwVer,
		SoftwareVersion: gs.SwVer,
		State:           state,
	}, nil
}

// passthrough relays a device-protocol JSON string through the cloud to the
// configured plug, re-authenticating once on an expired token.
func (c *CloudController) passthrough(ctx context.Context, requestData string) (json.RawMessage, error) {
	for attempt := 0; ; attempt++ {
		token, deviceID, endpoint, err := c.session(ctx)
		if err != nil {
			return nil, err
		}

		var res passthroughResult
		code, err := c.call(ctx, endpoint+"?token="+token, cloudRequest{
			Method: "passthrough",
			Params: passthroughParams{DeviceID: deviceID, RequestData: requestData},
		}, &res)
		if err != nil {
			if code == cloudErrCodeTokenExpired && attempt == 0 {
				c.resetSession()
				continue
			}
			return nil, err
		}
		return json.RawMessage(res.ResponseData), nil
	}
}

// session returns the cached token/device, logging in and resolving the
// device on first use.
func (c *CloudController) session(ctx context.Context) (token, deviceID, endpoint string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		var res loginResult
		if _, err := c.call(ctx, c.cfg.BaseURL, cloudRequest{
			Method: "login",
			Params: loginParams{
				AppType:       "Kasa_Android",
				CloudUserName: c.cfg.Email,
				CloudPassword: c.cfg.Password,
				TerminalUUID:  c.termID,
			},
		}, &res); err != nil {
			return "", "", "", fmt.Errorf("cloud login: %w", err)
		}
		c.token = res.Token
	}

	if c.deviceID == "" {
		dev, err := c.findDevice(ctx)
		if err != nil {
			return "", "", "", err
		}
		c.deviceID = dev.DeviceID
		c.passthruURL = dev.AppServerURL
		if c.passthruURL == "" {
			c.passthruURL = c.cfg.BaseURL
		}
	}
	return c.token, c.deviceID, c.passthruURL, nil
}

// findDevice picks the configured plug from the account's device list:
// by alias when one is configured, otherwise the first device.
// Caller holds c.mu.
func (c *CloudController) findDevice(ctx context.Context) (cloudDevice, error) {
	var res deviceListResult
	if _, err := c.call(ctx, c.cfg.BaseURL+"?token="+c.token, cloudRequest{Method: "getDeviceList"}, &res); err != nil {
		return cloudDevice{}, fmt.Errorf("list devices: %w", err)
	}
	if len(res.DeviceList) == 0 {
		return cloudDevice{}, ErrDeviceNotFound
	}
	if c.cfg.DeviceAlias == "" {
		return res.DeviceList[0], nil
	}
	for _, d := range res.DeviceList {
		if strings.EqualFold(d.Alias, c.cfg.DeviceAlias) {
			return d, nil
		}
	}
	return cloudDevice{}, fmt.Errorf("%w: alias %q", ErrDeviceNotFound, c.cfg.DeviceAlias)
}

// resetSession drops the cached token so the next call logs in again.
func (c *CloudController) resetSession() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// call POSTs one JSON request and decodes the result envelope. The returned
// int is the cloud error code (0 on success), useful for retry decisions.
func (c *CloudController) call(ctx context.Context, url string, reqBody cloudRequest, result any) (int, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("cloud API %s: unexpected status %d", reqBody.Method, resp.StatusCode)
	}

	var envelope cloudResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, fmt.Errorf("cloud API %s: decode response: %w", reqBody.Method, err)
	}
	if envelope.ErrorCode != cloudErrCodeOK {
		return envelope.ErrorCode, fmt.Errorf("cloud API %s: error_code=%d msg=%q", reqBody.Method, envelope.ErrorCode, envelope.Message)
	}
	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return 0, fmt.Errorf("cloud API %s: decode result: %w", reqBody.Method, err)
		}
	}
	return cloudErrCodeOK, nil
}

// sleepOrDone waits for d or returns early with the context's error.
func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
