package graphitems

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	abstractions "github.com/microsoft/kiota-abstractions-go"
	"github.com/microsoftgraph/msgraph-sdk-go/models"
	"github.com/microsoftgraph/msgraph-sdk-go/users"
	msgraphcore "github.com/microsoftgraph/msgraph-sdk-go-core"

	"github.com/agallego-css/GraphTools/internal/common/logger"
	"github.com/agallego-css/GraphTools/internal/common/ratelimit"
	"github.com/agallego-css/GraphTools/internal/common/retry"
	"github.com/agallego-css/GraphTools/internal/graphauth"
	"github.com/agallego-css/GraphTools/internal/pipeline"
)

const defaultPageSize = int32(100)

var eventSelectFields = []string{
	"id", "subject", "organizer", "attendees", "location", "start", "end", "type",
}

var messageSelectFields = []string{
	"id", "subject", "from", "toRecipients", "receivedDateTime",
}

// Source queries one mailbox for items matching a criterion. Subject
// criteria are pushed to the server as an exact $filter; sender criteria
// list the mailbox and rely on the client-side refiner, since the organizer
// field is not filterable. All result pages are exhausted before returning.
type Source struct {
	Session    *graphauth.Session
	Kind       pipeline.Kind
	Limiter    *ratelimit.Limiter
	MaxRetries int
	RetryDelay time.Duration
	Logger     *slog.Logger
	PageSize   int32
}

func (s *Source) pageSize() int32 {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return defaultPageSize
}

// QueryItems implements pipeline.Source.
func (s *Source) QueryItems(ctx context.Context, mailbox string, c pipeline.Criterion) ([]pipeline.Item, error) {
	if err := s.Limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if s.Kind == pipeline.KindMessage {
		return s.queryMessages(ctx, mailbox, c)
	}
	return s.queryEvents(ctx, mailbox, c)
}

// subjectFilter builds the server-side $filter for a subject criterion,
// or "" when the criterion needs client-side matching only.
func subjectFilter(c pipeline.Criterion) string {
	if subject, ok := c.Subject(); ok {
		return fmt.Sprintf("subject eq '%s'", escapeODataString(subject))
	}
	return ""
}

func (s *Source) queryEvents(ctx context.Context, mailbox string, c pipeline.Criterion) ([]pipeline.Item, error) {
	// Event times come back in the timezone named by the Prefer header;
	// request UTC so parsed times are directly comparable.
	headers := abstractions.NewRequestHeaders()
	headers.Add("Prefer", `outlook.timezone="UTC"`)

	queryParams := &users.ItemEventsRequestBuilderGetQueryParameters{
		Top:    pointerTo(s.pageSize()),
		Select: eventSelectFields,
	}
	filter := subjectFilter(c)
	if filter != "" {
		queryParams.Filter = &filter
	}
	requestConfig := &users.ItemEventsRequestBuilderGetRequestConfiguration{
		Headers:         headers,
		QueryParameters: queryParams,
	}

	logger.LogDebug(s.Logger, "Calling Graph API: GET /users/{id}/events",
		"mailbox", mailbox, "filter", filter, "top", s.pageSize())

	var result models.EventCollectionResponseable
	err := retry.RetryWithBackoff(ctx, s.MaxRetries, s.RetryDelay, func() error {
		apiResult, apiErr := s.Session.Client.Users().ByUserId(mailbox).Events().Get(ctx, requestConfig)
		if apiErr == nil {
			result = apiResult
		}
		return apiErr
	})
	if err != nil {
		return nil, enrichGraphAPIError(err, s.Logger, "queryEvents")
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Eventable](
		result,
		s.Session.Client.GetAdapter(),
		models.CreateEventCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}
	pageIterator.SetHeaders(headers)

	var items []pipeline.Item
	err = pageIterator.Iterate(ctx, func(event models.Eventable) bool {
		items = append(items, eventToItem(event, mailbox))
		return true
	})
	if err != nil {
		return nil, enrichGraphAPIError(err, s.Logger, "queryEvents")
	}

	logger.LogDebug(s.Logger, "API response complete", "mailbox", mailbox, "events", len(items))
	return items, nil
}

func (s *Source) queryMessages(ctx context.Context, mailbox string, c pipeline.Criterion) ([]pipeline.Item, error) {
	queryParams := &users.ItemMessagesRequestBuilderGetQueryParameters{
		Top:    pointerTo(s.pageSize()),
		Select: messageSelectFields,
	}
	filter := subjectFilter(c)
	if filter != "" {
		queryParams.Filter = &filter
	} else {
		// Unfiltered listing, newest first for predictable output order.
		queryParams.Orderby = []string{"receivedDateTime DESC"}
	}
	requestConfig := &users.ItemMessagesRequestBuilderGetRequestConfiguration{
		QueryParameters: queryParams,
	}

	logger.LogDebug(s.Logger, "Calling Graph API: GET /users/{id}/messages",
		"mailbox", mailbox, "filter", filter, "top", s.pageSize())

	var result models.MessageCollectionResponseable
	err := retry.RetryWithBackoff(ctx, s.MaxRetries, s.RetryDelay, func() error {
		apiResult, apiErr := s.Session.Client.Users().ByUserId(mailbox).Messages().Get(ctx, requestConfig)
		if apiErr == nil {
			result = apiResult
		}
		return apiErr
	})
	if err != nil {
		return nil, enrichGraphAPIError(err, s.Logger, "queryMessages")
	}

	pageIterator, err := msgraphcore.NewPageIterator[models.Messageable](
		result,
		s.Session.Client.GetAdapter(),
		models.CreateMessageCollectionResponseFromDiscriminatorValue,
	)
	if err != nil {
		return nil, fmt.Errorf("create page iterator: %w", err)
	}

	var items []pipeline.Item
	err = pageIterator.Iterate(ctx, func(message models.Messageable) bool {
		items = append(items, messageToItem(message, mailbox))
		return true
	})
	if err != nil {
		return nil, enrichGraphAPIError(err, s.Logger, "queryMessages")
	}

	logger.LogDebug(s.Logger, "API response complete", "mailbox", mailbox, "messages", len(items))
	return items, nil
}

// pointerTo is a generic helper function to create pointers to values
func pointerTo[T any](v T) *T {
	return &v
}
