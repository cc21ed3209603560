package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapflow/zapflow-backend/internal/model"
)

func TestParseConnectedHandlesKnownShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want bool
	}{
		{"nested instance state open", `{"instance":{"state":"open"}}`, true},
		{"top level state connected", `{"state":"CONNECTED"}`, true},
		{"boolean connected true", `{"connected":true}`, true},
		{"boolean connected false", `{"connected":false}`, false},
		{"status online", `{"status":"online"}`, true},
		{"state closed", `{"state":"close"}`, false},
		{"nested instance status", `{"instance":{"status":"open"}}`, true},
		{"empty body", `{}`, false},
		{"garbage", `not json`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseConnected([]byte(tc.body)))
		})
	}
}

func TestConnectionStateRequestsInstanceEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/instance/connectionState/mare-main", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		w.Write([]byte(`{"instance":{"state":"open"}}`))
	}))
	defer srv.Close()

	client := NewDeviceGatewayClient(srv.URL)
	tenant := &model.Tenant{ID: "t1", InstanceName: "mare-main", InstanceAPIKey: "secret"}

	connected, err := client.ConnectionState(context.Background(), tenant)
	require.NoError(t, err)
	assert.True(t, connected)
}

func TestConnectionStateNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewDeviceGatewayClient(srv.URL)
	_, err := client.ConnectionState(context.Background(), &model.Tenant{InstanceName: "gone"})
	assert.Error(t, err)
}

func TestDeviceSendTemplateMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/message/sendTemplate/mare-main", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("apikey"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewDeviceGatewayClient(srv.URL)
	creds := Credentials{Token: "secret", SenderID: "mare-main"}
	err := client.SendTemplateMessage(context.Background(), creds, "5511999990000", "tpl-1", "promo", "pt_BR", nil)
	assert.NoError(t, err)
}

func TestDeviceSendTemplateMessageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"instance disconnected"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewDeviceGatewayClient(srv.URL)
	err := client.SendTemplateMessage(context.Background(), Credentials{SenderID: "x"}, "5511999990000", "", "promo", "pt_BR", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instance disconnected")
}
