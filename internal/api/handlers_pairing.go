package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type pairingTokenOutput struct {
	Body struct {
		Token string `json:"token"`
	}
}

type verifyPairingInput struct {
	Body struct {
		Token string `json:"token" validate:"required"`
	}
}

type verifyPairingOutput struct {
	Body struct {
		DeviceID string `json:"device_id"`
		Nonce    string `json:"nonce"`
	}
}

func (s *Server) registerPairingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "issuePairingToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/pairing/token",
		Summary:     "Issue a short-lived device-pairing handshake token",
		Description: "Mints a PASETO v4.local token naming this device, for a peer discovered " +
			"over mDNS to exchange during a sync pairing request.",
		Tags: []string{"Pairing"},
	}, s.handleIssuePairingToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "verifyPairingToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/pairing/verify",
		Summary:     "Verify a peer's pairing handshake token",
		Description: "Validates a token issued by /pairing/token, returning the initiating " +
			"device's ID and nonce so the operator can approve or deny the pairing request.",
		Tags: []string{"Pairing"},
	}, s.handleVerifyPairingToken)
}

func (s *Server) handleIssuePairingToken(ctx context.Context, input *struct {
	DeviceID string `query:"device_id" doc:"This device's sync identifier"`
}) (*pairingTokenOutput, error) {
	if input.DeviceID == "" {
		return nil, huma.Error400BadRequest("device_id is required")
	}
	token, err := s.pairing.IssueHandshakeToken(input.DeviceID)
	if err != nil {
		return nil, huma.Error500InternalServerError("issue pairing token", err)
	}
	out := &pairingTokenOutput{}
	out.Body.Token = token
	return out, nil
}

func (s *Server) handleVerifyPairingToken(ctx context.Context, input *verifyPairingInput) (*verifyPairingOutput, error) {
	claims, err := s.pairing.VerifyHandshakeToken(input.Body.Token)
	if err != nil {
		return nil, huma.Error401Unauthorized("invalid or expired pairing token", err)
	}
	out := &verifyPairingOutput{}
	out.Body.DeviceID = claims.DeviceID
	out.Body.Nonce = claims.Nonce
	return out, nil
}
