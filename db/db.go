package db

import (
	"context"
	"time"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/document"
	"github.com/jsphweid/jianpu/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

var ErrNotFound = errors.New("document not found")

// Store persists document envelopes addressed by owner, title and album.
type Store interface {
	Save(ctx context.Context, rec model.DocumentRecord) error
	Load(ctx context.Context, owner, title, album string) (model.DocumentRecord, error)
	Delete(ctx context.Context, owner, title, album string) error
	List(ctx context.Context, owner string) ([]model.DocumentSummary, error)
}

type item struct {
	PK        string
	SK        string
	Title     string
	Album     string
	KeyIndex  int
	TempoBPM  int
	Data      string
	UpdatedAt int64
}

func SortKey(title, album string) string {
	return norm.NFC.String(title) + "#" + norm.NFC.String(album)
}

func primaryKey(owner, title, album string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"PK": {S: aws.String(owner)},
		"SK": {S: aws.String(SortKey(title, album))},
	}
}

type DynamoStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
	now    func() time.Time
}

func NewDynamoStore(client dynamodbiface.DynamoDBAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table, now: time.Now}
}

// NewDefaultStore connects to the table configured through the environment.
func NewDefaultStore() (*DynamoStore, error) {
	endpoint := constants.GetDynamoEndpoint()
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(constants.GetRegion()),
		Endpoint: &endpoint,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new DynamoDB session")
	}
	return NewDynamoStore(dynamodb.New(sess), constants.GetTableName()), nil
}

func (s *DynamoStore) Save(ctx context.Context, rec model.DocumentRecord) error {
	data, err := document.Encode(rec.Envelope.Blocks, rec.Envelope.Settings)
	if err != nil {
		return err
	}
	av, err := dynamodbattribute.MarshalMap(item{
		PK:        rec.Owner,
		SK:        SortKey(rec.Title, rec.Album),
		Title:     rec.Title,
		Album:     rec.Album,
		KeyIndex:  rec.KeyIndex,
		TempoBPM:  rec.TempoBPM,
		Data:      string(data),
		UpdatedAt: s.now().Unix(),
	})
	if err != nil {
		return errors.Wrap(err, "marshalling document")
	}
	_, err = s.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	return errors.Wrapf(err, "saving %q", rec.Title)
}

func (s *DynamoStore) Load(ctx context.Context, owner, title, album string) (model.DocumentRecord, error) {
	out, err := s.client.GetItemWithContext(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       primaryKey(owner, title, album),
	})
	if err != nil {
		return model.DocumentRecord{}, errors.Wrapf(err, "loading %q", title)
	}
	if len(out.Item) == 0 {
		return model.DocumentRecord{}, errors.Wrapf(ErrNotFound, "%q (%q)", title, album)
	}
	var it item
	if err := dynamodbattribute.UnmarshalMap(out.Item, &it); err != nil {
		return model.DocumentRecord{}, errors.Wrap(err, "unmarshalling document")
	}
	return model.DocumentRecord{
		Owner:     it.PK,
		Title:     it.Title,
		Album:     it.Album,
		KeyIndex:  it.KeyIndex,
		TempoBPM:  it.TempoBPM,
		Envelope:  document.Decode([]byte(it.Data)),
		UpdatedAt: it.UpdatedAt,
	}, nil
}

func (s *DynamoStore) Delete(ctx context.Context, owner, title, album string) error {
	_, err := s.client.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       primaryKey(owner, title, album),
	})
	return errors.Wrapf(err, "deleting %q", title)
}

func (s *DynamoStore) List(ctx context.Context, owner string) ([]model.DocumentSummary, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("PK = :owner"),
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":owner": {S: aws.String(owner)},
		},
		ProjectionExpression: aws.String("Title, Album, UpdatedAt"),
	}
	var res []model.DocumentSummary
	err := s.client.QueryPagesWithContext(ctx, input, func(page *dynamodb.QueryOutput, last bool) bool {
		for _, v := range page.Items {
			var it item
			if err := dynamodbattribute.UnmarshalMap(v, &it); err != nil {
				continue
			}
			res = append(res, model.DocumentSummary{Title: it.Title, Album: it.Album, UpdatedAt: it.UpdatedAt})
		}
		return true
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing documents of %s", owner)
	}
	return res, nil
}
