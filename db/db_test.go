package db

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/jsphweid/jianpu/model"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]*dynamodb.AttributeValue
	fail  error
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func keyOf(av map[string]*dynamodb.AttributeValue) string {
	return *av["PK"].S + "|" + *av["SK"].S
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.items[keyOf(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItemWithContext(_ aws.Context, in *dynamodb.GetItemInput, _ ...request.Option) (*dynamodb.GetItemOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return &dynamodb.GetItemOutput{Item: f.items[keyOf(in.Key)]}, nil
}

func (f *fakeDynamo) DeleteItemWithContext(_ aws.Context, in *dynamodb.DeleteItemInput, _ ...request.Option) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, keyOf(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamo) QueryPagesWithContext(_ aws.Context, in *dynamodb.QueryInput, fn func(*dynamodb.QueryOutput, bool) bool, _ ...request.Option) error {
	owner := *in.ExpressionAttributeValues[":owner"].S
	var keys []string
	for k, v := range f.items {
		if *v["PK"].S == owner {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	page := &dynamodb.QueryOutput{}
	for _, k := range keys {
		page.Items = append(page.Items, f.items[k])
	}
	fn(page, true)
	return nil
}

func newStore() (*DynamoStore, *fakeDynamo) {
	fake := newFakeDynamo()
	s := NewDynamoStore(fake, "test-table")
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s, fake
}

func record(title, album string) model.DocumentRecord {
	return model.DocumentRecord{
		Owner:    "owner-1",
		Title:    title,
		Album:    album,
		KeyIndex: 1,
		TempoBPM: 96,
		Envelope: model.Envelope{
			Blocks:   []model.Block{{Type: model.MelodyBlock, Content: "5 6_ 7_ 1'-"}},
			Settings: model.Settings{HorizontalSpacing: 40, VerticalScale: 10},
		},
	}
}

func TestSaveLoad(t *testing.T) {
	assert := assert.New(t)
	s, _ := newStore()
	ctx := context.Background()

	assert.NoError(s.Save(ctx, record("Jasmine", "Folk")))
	got, err := s.Load(ctx, "owner-1", "Jasmine", "Folk")
	assert.NoError(err)

	want := record("Jasmine", "Folk")
	want.UpdatedAt = 1700000000
	assert.Equal(want, got)
}

func TestLoadMissing(t *testing.T) {
	s, _ := newStore()
	_, err := s.Load(context.Background(), "owner-1", "nope", "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestKeysAreNormalized(t *testing.T) {
	assert := assert.New(t)
	s, _ := newStore()
	ctx := context.Background()

	assert.NoError(s.Save(ctx, record("Caf\u00e9", "")))
	got, err := s.Load(ctx, "owner-1", "Cafe\u0301", "")
	assert.NoError(err)
	assert.Equal("Caf\u00e9", got.Title)
	assert.Equal("Caf\u00e9#", SortKey("Cafe\u0301", ""))
}

func TestLoadsLegacyData(t *testing.T) {
	s, fake := newStore()
	fake.items["owner-1|Old#"] = map[string]*dynamodb.AttributeValue{
		"PK":    {S: aws.String("owner-1")},
		"SK":    {S: aws.String("Old#")},
		"Title": {S: aws.String("Old")},
		"Data":  {S: aws.String(`["1 2 3", "5"]`)},
	}

	got, err := s.Load(context.Background(), "owner-1", "Old", "")
	assert.NoError(t, err)
	assert.Equal(t, []model.Block{
		{Type: model.MelodyBlock, Content: "1 2 3"},
		{Type: model.MelodyBlock, Content: "5"},
	}, got.Envelope.Blocks)
	assert.Equal(t, model.Settings{HorizontalSpacing: 40, VerticalScale: 10}, got.Envelope.Settings)
}

func TestDeleteAndList(t *testing.T) {
	assert := assert.New(t)
	s, _ := newStore()
	ctx := context.Background()

	assert.NoError(s.Save(ctx, record("A", "x")))
	assert.NoError(s.Save(ctx, record("B", "")))
	other := record("C", "")
	other.Owner = "owner-2"
	assert.NoError(s.Save(ctx, other))

	list, err := s.List(ctx, "owner-1")
	assert.NoError(err)
	assert.Equal([]model.DocumentSummary{
		{Title: "A", Album: "x", UpdatedAt: 1700000000},
		{Title: "B", UpdatedAt: 1700000000},
	}, list)

	assert.NoError(s.Delete(ctx, "owner-1", "A", "x"))
	list, err = s.List(ctx, "owner-1")
	assert.NoError(err)
	assert.Len(list, 1)
}

func TestCollaboratorFailureIsWrapped(t *testing.T) {
	s, fake := newStore()
	fake.fail = errors.New("unreachable")
	err := s.Save(context.Background(), record("A", ""))
	assert.EqualError(t, err, `saving "A": unreachable`)
}
