package push

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sikadvoltz/progression/internal/domain"
	"sikadvoltz/progression/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Config holds the SNS settings for the push sender.
type Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	FCMPlatformARN  string
	APNSPlatformARN string
}

// SNSSender dispatches pushes through AWS SNS platform endpoints.
type SNSSender struct {
	client     *sns.Client
	deviceRepo repository.DeviceRepository
	fcmArn     string
	apnsArn    string
}

// NewSNSSender builds the SNS client from config. Static credentials are
// optional; without them the default AWS credential chain applies.
func NewSNSSender(cfg Config, deviceRepo repository.DeviceRepository) (*SNSSender, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for SNS: %w", err)
	}

	return &SNSSender{
		client:     sns.NewFromConfig(awsCfg),
		deviceRepo: deviceRepo,
		fcmArn:     cfg.FCMPlatformARN,
		apnsArn:    cfg.APNSPlatformARN,
	}, nil
}

// RegisterDevice creates (or refreshes) an SNS platform endpoint for the
// device token and stores it keyed by token hash, so re-registrations of
// the same token update in place.
func (s *SNSSender) RegisterDevice(ctx context.Context, userID primitive.ObjectID, platform, token string) (*domain.Device, error) {
	appArn, err := s.platformArn(platform)
	if err != nil {
		return nil, err
	}

	out, err := s.client.CreatePlatformEndpoint(ctx, &sns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(appArn),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, err
	}

	device := &domain.Device{
		UserID:      userID,
		Platform:    strings.ToLower(platform),
		TokenHash:   tokenHash(token),
		EndpointARN: aws.ToString(out.EndpointArn),
		Enabled:     true,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.deviceRepo.Upsert(ctx, device); err != nil {
		return nil, err
	}
	return device, nil
}

// Send publishes the notification to every enabled endpoint of the user.
// Succeeds when at least one endpoint accepted the message.
func (s *SNSSender) Send(ctx context.Context, userID primitive.ObjectID, n *domain.Notification) error {
	devices, err := s.deviceRepo.ListEnabledByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoDevices
	}

	data := map[string]string{
		"notificationId": n.ID,
		"type":           string(n.Type),
		"priority":       string(n.Priority),
	}
	msg := map[string]interface{}{
		"default": n.Message,
		"GCM": map[string]interface{}{
			"notification": map[string]string{
				"title": n.Title,
				"body":  n.Message,
			},
			"data": data,
		},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	var lastErr error
	delivered := false
	for _, d := range devices {
		_, err := s.client.Publish(ctx, &sns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		})
		if err != nil {
			lastErr = err
			continue
		}
		delivered = true
	}
	if !delivered {
		if lastErr != nil {
			return lastErr
		}
		return errors.New("push publish failed for all endpoints")
	}
	return nil
}

func (s *SNSSender) platformArn(platform string) (string, error) {
	switch strings.ToLower(platform) {
	case "android":
		if s.fcmArn == "" {
			return "", errors.New("FCM platform ARN not configured")
		}
		return s.fcmArn, nil
	case "ios":
		if s.apnsArn != "" {
			return s.apnsArn, nil
		}
		// iOS via FCM when no native APNS application is configured.
		if s.fcmArn == "" {
			return "", errors.New("no platform ARN configured for ios")
		}
		return s.fcmArn, nil
	default:
		return "", fmt.Errorf("unknown platform %q", platform)
	}
}

func tokenHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
