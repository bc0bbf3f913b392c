package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"orgmatrix/pkg/domain"
)

type stubAPI struct {
	objects map[string][]byte
	getErr  error
	putErr  error
	puts    []string
}

func newStubAPI() *stubAPI {
	return &stubAPI{objects: make(map[string][]byte)}
}

func (a *stubAPI) GetObject(_ context.Context, input *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	if a.getErr != nil {
		return nil, a.getErr
	}
	data, ok := a.objects[*input.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (a *stubAPI) PutObject(_ context.Context, input *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if a.putErr != nil {
		return nil, a.putErr
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	a.objects[*input.Key] = data
	a.puts = append(a.puts, *input.Key)
	return &awss3.PutObjectOutput{}, nil
}

func TestNewWithAPIHydratesFromObjects(t *testing.T) {
	api := newStubAPI()
	orgs := []domain.Organization{{ID: "org_1", Name: "Bucketed U", Code: "BU"}}
	payload, err := json.Marshal(orgs)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	api.objects[keyOrganizations] = payload

	store, err := NewWithAPI(context.Background(), api, "snapshots", nil)
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	got, ok := store.GetOrganization("org_1")
	if !ok || got.Name != "Bucketed U" {
		t.Fatalf("expected hydrated organization, got %+v (found=%v)", got, ok)
	}
}

func TestMissingObjectsStartEmpty(t *testing.T) {
	store, err := NewWithAPI(context.Background(), newStubAPI(), "snapshots", nil)
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	if orgs := store.ListOrganizations(); len(orgs) != 0 {
		t.Fatalf("expected empty collection, got %+v", orgs)
	}
}

func TestRunInTransactionWritesBothObjects(t *testing.T) {
	api := newStubAPI()
	store, err := NewWithAPI(context.Background(), api, "snapshots", nil)
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		tx.CreateOrganization(domain.Organization{Name: "Persist Me", Code: "PM"})
		tx.SetAssignmentValue("course_fe", "org_1", "299")
		return nil
	}); err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	if len(api.puts) != 2 {
		t.Fatalf("expected both objects written, got %v", api.puts)
	}
	var matrix domain.Matrix
	if err := json.Unmarshal(api.objects[keyMatrix], &matrix); err != nil {
		t.Fatalf("decode persisted matrix: %v", err)
	}
	if cell := matrix.Cell("course_fe", "org_1"); !cell.Enabled || cell.Value != "299" {
		t.Fatalf("unexpected persisted cell: %+v", cell)
	}
}

func TestRunInTransactionReportsPutError(t *testing.T) {
	api := newStubAPI()
	store, err := NewWithAPI(context.Background(), api, "snapshots", nil)
	if err != nil {
		t.Fatalf("NewWithAPI: %v", err)
	}
	api.putErr = errors.New("access denied")
	if _, err := store.RunInTransaction(context.Background(), func(domain.Transaction) error { return nil }); err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Fatalf("expected put error, got %v", err)
	}
}

func TestNewWithAPIRequiresBucket(t *testing.T) {
	if _, err := NewWithAPI(context.Background(), newStubAPI(), "", nil); err == nil {
		t.Fatalf("expected bucket required error")
	}
}

func TestNewWithAPIGetError(t *testing.T) {
	api := newStubAPI()
	api.getErr = errors.New("throttled")
	if _, err := NewWithAPI(context.Background(), api, "snapshots", nil); err == nil || !strings.Contains(err.Error(), "throttled") {
		t.Fatalf("expected get error, got %v", err)
	}
}

func TestNewWithAPIDecodeError(t *testing.T) {
	api := newStubAPI()
	api.objects[keyMatrix] = []byte("not-json")
	if _, err := NewWithAPI(context.Background(), api, "snapshots", nil); err == nil || !strings.Contains(err.Error(), "decode matrix") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
