package services

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/questhunt/quest-backend/internal/utils"
)

// SMSSender is the opaque delivery collaborator for OTP codes.
type SMSSender interface {
	Send(ctx context.Context, phone, body string) error
}

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(accountSID, authToken, from string) SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &twilioSender{client: client, from: from}
}

func (s *twilioSender) Send(_ context.Context, phone, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send SMS to %s via Twilio", phone)
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}

// dryRunSender logs instead of sending. For local development.
type dryRunSender struct{}

func NewDryRunSender() SMSSender {
	return dryRunSender{}
}

func (dryRunSender) Send(_ context.Context, phone, body string) error {
	utils.Logger.Infof("SMS dry run to %s: %s", phone, body)
	return nil
}
