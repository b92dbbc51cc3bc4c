package service

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"parkinglot/internal/lot"
)

// Notifier sends reservation updates by email and SMS. Both channels
// are skipped when their credentials are not configured, so the lot
// works without any provider set up.
type Notifier struct{}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// ReservationStatusChanged notifies the driver about a reservation
// event, fire-and-forget.
func (n *Notifier) ReservationStatusChanged(res *lot.Reservation, contact Contact, status string) {
	if n == nil {
		return
	}
	const timeLayout = "02 Jan 2006 15:04 MST"
	if contact.Email != "" {
		subject := fmt.Sprintf("Your parking reservation is %s - Spot %s", status, res.SpotID)
		body := fmt.Sprintf(
			"Your reservation has been %s.\n\n"+
				"Vehicle plate: %s\n"+
				"Spot: %s\n"+
				"From: %s\n"+
				"To: %s\n",
			status, res.Vehicle.Plate, res.SpotID,
			res.Start.Format(timeLayout), res.End.Format(timeLayout),
		)
		go func() {
			if err := SendEmailWithSendGrid(contact.Email, res.Vehicle.Plate, subject, body); err != nil {
				log.Printf("Failed to send reservation email for %s: %v", res.Vehicle.Plate, err)
			}
		}()
	}
	if contact.Phone != "" {
		msg := fmt.Sprintf("Parking: reservation for %s has been %s. Spot %s, from %s.",
			res.Vehicle.Plate, status, res.SpotID, res.Start.Format("02/01 15:04"))
		go func() {
			if err := SendSMS(contact.Phone, msg); err != nil {
				log.Printf("Failed to send reservation SMS for %s: %v", res.Vehicle.Plate, err)
			}
		}()
	}
}

// SendEmailWithSendGrid sends a plain-text email through SendGrid.
func SendEmailWithSendGrid(toEmail, toName, subject, body string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		log.Println("SENDGRID_API_KEY not set; skipping email")
		return nil
	}
	fromEmail := os.Getenv("SENDGRID_FROM_EMAIL")
	if fromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL not set")
	}
	fromName := os.Getenv("SENDGRID_FROM_NAME")
	if fromName == "" {
		fromName = "Parking Lot"
	}

	from := mail.NewEmail(fromName, fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sending email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	log.Printf("Email sent to %s (subject: %s)", toEmail, subject)
	return nil
}

// SendSMS sends a text message through Twilio.
func SendSMS(toNumber, body string) error {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	fromNumber := os.Getenv("TWILIO_FROM_NUMBER")
	if accountSid == "" || authToken == "" || fromNumber == "" {
		log.Println("Twilio credentials not set; skipping SMS")
		return nil
	}
	if !strings.HasPrefix(toNumber, "+") {
		log.Printf("Destination number %q is not in E.164 format; the SMS may fail", toNumber)
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username:   accountSid,
		Password:   authToken,
		AccountSid: accountSid,
	})
	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(fromNumber)
	params.SetBody(body)

	resp, err := client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("sending SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("SMS sent to %s (SID %s)", toNumber, *resp.Sid)
	}
	return nil
}
