package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/types"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBatchRetries bounds how often unprocessed batch items are resent
const maxBatchRetries = 5

// Directory item kinds (partition key of the directory table)
const (
	kindQueue    = "queue"
	kindOperator = "operator"
	kindGroup    = "group"
)

// callItem is the DynamoDB shape of a call record. Dates are partitioned in UTC.
type callItem struct {
	DateKey      string `dynamodbav:"DateKey"` // YYYY-MM-DD (partition key)
	CallID       string `dynamodbav:"CallID"`  // sort key
	CallerNumber string `dynamodbav:"CallerNumber"`
	StartTime    string `dynamodbav:"StartTime"` // RFC3339
	EndTime      string `dynamodbav:"EndTime,omitempty"`
	WaitTime     int    `dynamodbav:"WaitTime"` // seconds
	TalkTime     int    `dynamodbav:"TalkTime"` // seconds
	QueueID      string `dynamodbav:"QueueID"`
	AgentID      string `dynamodbav:"AgentID,omitempty"`
	Status       string `dynamodbav:"Status"`
	Result       string `dynamodbav:"Result,omitempty"`
}

// directoryItem is the DynamoDB shape of a queue, operator or group
type directoryItem struct {
	Kind    string `dynamodbav:"Kind"` // partition key
	ID      string `dynamodbav:"ID"`   // sort key
	Name    string `dynamodbav:"Name"`
	GroupID string `dynamodbav:"GroupID,omitempty"`
	Status  string `dynamodbav:"Status,omitempty"`
}

func toCallItem(r types.CallRecord) callItem {
	item := callItem{
		DateKey:      r.DateKey(time.UTC),
		CallID:       r.ID,
		CallerNumber: r.CallerNumber,
		StartTime:    r.StartTime.UTC().Format(time.RFC3339),
		WaitTime:     r.WaitTime,
		TalkTime:     r.TalkTime,
		QueueID:      r.QueueID,
		AgentID:      r.AgentID,
		Status:       string(r.Status),
		Result:       string(r.Result),
	}
	if !r.EndTime.IsZero() {
		item.EndTime = r.EndTime.UTC().Format(time.RFC3339)
	}
	return item
}

func fromCallItem(item callItem) (types.CallRecord, error) {
	start, err := time.Parse(time.RFC3339, item.StartTime)
	if err != nil {
		return types.CallRecord{}, fmt.Errorf("call %s: malformed start time: %w", item.CallID, types.ErrInvalidArgument)
	}
	record := types.CallRecord{
		ID:           item.CallID,
		CallerNumber: item.CallerNumber,
		StartTime:    start,
		WaitTime:     item.WaitTime,
		TalkTime:     item.TalkTime,
		QueueID:      item.QueueID,
		AgentID:      item.AgentID,
		Status:       types.CallStatus(item.Status),
		Result:       types.CallResult(item.Result),
	}
	if item.EndTime != "" {
		end, err := time.Parse(time.RFC3339, item.EndTime)
		if err != nil {
			return types.CallRecord{}, fmt.Errorf("call %s: malformed end time: %w", item.CallID, types.ErrInvalidArgument)
		}
		record.EndTime = end
	}
	return record, nil
}

// dateKeys lists the UTC partition keys touched by [from, to)
func dateKeys(from, to time.Time) []string {
	if !from.Before(to) {
		return nil
	}
	first := startOfUTCDay(from)
	last := to.UTC().Add(-time.Nanosecond)

	var keys []string
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(types.DateLayout))
	}
	return keys
}

func startOfUTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client  *dynamodb.Client
	config  DynamoConfig
	logger  zerolog.Logger
	backoff func() backoff.BackOff
}

func newDynamoDBStore(client *dynamodb.Client, cfg DynamoConfig, logger zerolog.Logger) *DynamoDBStore {
	return &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger.With().Str("component", "dynamodb_store").Logger(),
		backoff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxBatchRetries)
		},
	}
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == ModeLocal {
		// Build the client directly; LoadDefaultConfig probes IMDS, which
		// hangs on EC2 hosts when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := newDynamoDBStore(client, cfg, logger)

	if cfg.Mode == ModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

// SaveCallRecord validates and stores a record, assigning an id if missing
func (s *DynamoDBStore) SaveCallRecord(ctx context.Context, record types.CallRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("failed to save call record: %w", err)
	}

	item, err := attributevalue.MarshalMap(toCallItem(record))
	if err != nil {
		return fmt.Errorf("failed to marshal call record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.CallRecordsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save call record: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) GetCallRecords(ctx context.Context, from, to time.Time) ([]types.CallRecord, error) {
	records := make([]types.CallRecord, 0)

	for _, dateKey := range dateKeys(from, to) {
		keyCond := expression.Key("DateKey").Equal(expression.Value(dateKey))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build expression: %w", err)
		}

		var items []callItem
		if err := s.query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.CallRecordsTable),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}, &items); err != nil {
			return nil, fmt.Errorf("failed to query call records: %w", err)
		}

		for _, item := range items {
			record, err := fromCallItem(item)
			if err != nil {
				s.logger.Warn().Err(err).Str("date_key", dateKey).Msg("skipping malformed call record")
				continue
			}
			if inRange(record.StartTime, from, to) {
				records = append(records, record)
			}
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].StartTime.Equal(records[j].StartTime) {
			return records[i].StartTime.Before(records[j].StartTime)
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func (s *DynamoDBStore) GetDirectory(ctx context.Context) (types.Directory, error) {
	var dir types.Directory

	for _, kind := range []string{kindQueue, kindOperator, kindGroup} {
		keyCond := expression.Key("Kind").Equal(expression.Value(kind))
		expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
		if err != nil {
			return types.Directory{}, fmt.Errorf("failed to build expression: %w", err)
		}

		var items []directoryItem
		if err := s.query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.config.DirectoryTable),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		}, &items); err != nil {
			return types.Directory{}, fmt.Errorf("failed to query %s directory: %w", kind, err)
		}

		for _, item := range items {
			switch kind {
			case kindQueue:
				dir.Queues = append(dir.Queues, types.Queue{ID: item.ID, Name: item.Name})
			case kindOperator:
				dir.Operators = append(dir.Operators, types.Operator{
					ID:      item.ID,
					Name:    item.Name,
					GroupID: item.GroupID,
					Status:  types.OperatorStatus(item.Status),
				})
			case kindGroup:
				dir.Groups = append(dir.Groups, types.Group{ID: item.ID, Name: item.Name})
			}
		}
	}
	return dir, nil
}

func (s *DynamoDBStore) SaveDirectory(ctx context.Context, dir types.Directory) error {
	items := make([]directoryItem, 0, len(dir.Queues)+len(dir.Operators)+len(dir.Groups))
	for _, q := range dir.Queues {
		items = append(items, directoryItem{Kind: kindQueue, ID: q.ID, Name: q.Name})
	}
	for _, op := range dir.Operators {
		items = append(items, directoryItem{
			Kind:    kindOperator,
			ID:      op.ID,
			Name:    op.Name,
			GroupID: op.GroupID,
			Status:  string(op.Status),
		})
	}
	for _, g := range dir.Groups {
		items = append(items, directoryItem{Kind: kindGroup, ID: g.ID, Name: g.Name})
	}

	// BatchWriteItem accepts at most 25 requests
	for i := 0; i < len(items); i += 25 {
		end := i + 25
		if end > len(items) {
			end = len(items)
		}

		requests := make([]dbtypes.WriteRequest, 0, end-i)
		for _, item := range items[i:end] {
			av, err := attributevalue.MarshalMap(item)
			if err != nil {
				return fmt.Errorf("failed to marshal directory item: %w", err)
			}
			requests = append(requests, dbtypes.WriteRequest{PutRequest: &dbtypes.PutRequest{Item: av}})
		}

		if err := s.batchWrite(ctx, map[string][]dbtypes.WriteRequest{s.config.DirectoryTable: requests}); err != nil {
			return fmt.Errorf("failed to save directory: %w", err)
		}
	}
	return nil
}

// batchWrite sends a batch and resends whatever DynamoDB leaves unprocessed
func (s *DynamoDBStore) batchWrite(ctx context.Context, pending map[string][]dbtypes.WriteRequest) error {
	op := func() error {
		result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			// The SDK already retried transport and throttling errors
			return backoff.Permanent(err)
		}
		if n := countRequests(result.UnprocessedItems); n > 0 {
			s.logger.Warn().Int("unprocessed", n).Msg("batch write left items unprocessed, retrying")
			pending = result.UnprocessedItems
			return fmt.Errorf("%d items unprocessed", n)
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(s.backoff(), ctx))
}

func countRequests(items map[string][]dbtypes.WriteRequest) int {
	var n int
	for _, requests := range items {
		n += len(requests)
	}
	return n
}

// query runs a paginated query and unmarshals every page into out
func (s *DynamoDBStore) query(ctx context.Context, input *dynamodb.QueryInput, out interface{}) error {
	var all []map[string]dbtypes.AttributeValue

	for {
		result, err := s.client.Query(ctx, input)
		if err != nil {
			return err
		}
		all = append(all, result.Items...)

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	if err := attributevalue.UnmarshalListOfMaps(all, out); err != nil {
		return fmt.Errorf("failed to unmarshal items: %w", err)
	}
	return nil
}
