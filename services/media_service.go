package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"chispa_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const presignExpiry = 5 * time.Minute

// MediaService treats blob storage as opaque: presigned S3 URLs out, a Media
// record per uploaded object in. The one invariant it owns is attachment:
// a media object belongs to at most one message or one profile, never both.
type MediaService struct {
	Dynamo    DynamoAPI
	Presigner *s3.PresignClient
	Bucket    string
}

// InitializeS3Client initializes the S3 client used for presigning.
func InitializeS3Client(region string) *s3.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(region))
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	return s3.NewFromConfig(cfg)
}

// GenerateUploadURL generates a presigned URL for uploading a file
func (ms *MediaService) GenerateUploadURL(fileName, fileType string) (string, string, error) {
	key := "chat-media/" + time.Now().Format("20060102150405") + "-" + fileName
	params := &s3.PutObjectInput{
		Bucket:      aws.String(ms.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(fileType),
	}
	presignedURL, err := ms.Presigner.PresignPutObject(context.TODO(), params, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}
	return presignedURL.URL, key, nil
}

// CreateMedia registers the Media record for an object the client finished
// uploading and returns it with its public URL. A profile media (avatar) is
// bound to the uploader's profile right away; a message media stays unbound
// until AttachToMessage claims it.
func (ms *MediaService) CreateMedia(ctx context.Context, key, mimeType string, size int64, mediaType, profileID string) (*models.Media, error) {
	media := models.Media{
		MediaID:   uuid.NewString(),
		URL:       fmt.Sprintf("https://%s.s3.amazonaws.com/%s", ms.Bucket, key),
		Key:       key,
		Type:      models.MediaTypeMessage,
		MimeType:  mimeType,
		Size:      size,
		CreatedAt: models.Now(),
	}
	if mediaType == models.MediaTypeProfile {
		media.Type = models.MediaTypeProfile
		media.ProfileID = profileID
	}

	if err := ms.Dynamo.PutItem(ctx, models.MediaTable, media); err != nil {
		return nil, fmt.Errorf("failed to store media record: %w", err)
	}
	return &media, nil
}

// GetMedia retrieves a media record by id.
func (ms *MediaService) GetMedia(ctx context.Context, mediaID string) (*models.Media, error) {
	key := map[string]types.AttributeValue{
		"mediaId": &types.AttributeValueMemberS{Value: mediaID},
	}
	item, err := ms.Dynamo.GetItem(ctx, models.MediaTable, key)
	if err != nil {
		return nil, err
	}

	var media models.Media
	if err := attributevalue.UnmarshalMap(item, &media); err != nil {
		return nil, fmt.Errorf("failed to parse media: %w", err)
	}
	return &media, nil
}

// AttachToMessage binds the media object to a message. The conditional
// update enforces at-most-one attachment; a media already bound to another
// message, or to a profile, is a conflict, not a silent steal.
func (ms *MediaService) AttachToMessage(ctx context.Context, mediaID, messageID string) (*models.Media, error) {
	key := map[string]types.AttributeValue{
		"mediaId": &types.AttributeValueMemberS{Value: mediaID},
	}
	updateExpression := "SET messageId = :messageId"
	conditionExpression := "attribute_exists(mediaId) AND attribute_not_exists(messageId) AND attribute_not_exists(profileId)"
	expressionValues := map[string]types.AttributeValue{
		":messageId": &types.AttributeValueMemberS{Value: messageID},
	}

	attrs, err := ms.Dynamo.UpdateItemWithCondition(ctx, models.MediaTable, key, updateExpression, conditionExpression, expressionValues, nil)
	if err != nil {
		if !errors.Is(err, ErrConditionFailed) {
			return nil, fmt.Errorf("failed to attach media: %w", err)
		}
		existing, getErr := ms.GetMedia(ctx, mediaID)
		if getErr != nil {
			return nil, getErr
		}
		if existing.MessageID == messageID {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: media already attached", ErrConflict)
	}

	var media models.Media
	if err := attributevalue.UnmarshalMap(attrs, &media); err != nil {
		return nil, fmt.Errorf("failed to parse media: %w", err)
	}
	return &media, nil
}
