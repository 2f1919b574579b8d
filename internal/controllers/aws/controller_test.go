package aws_test

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/smithy-go"
	"github.com/isometry/traffic-dash/internal/controllers/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	err     error
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body:         io.NopCloser(strings.NewReader(body)),
		ContentType:  awssdk.String("text/css"),
		LastModified: awssdk.Time(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)),
	}, nil
}

type fakeSSM struct {
	values    map[string]string
	decrypted bool
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.decrypted = awssdk.ToBool(in.WithDecryption)
	v, ok := f.values[*in.Name]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: awssdk.String(v)}}, nil
}

func newController(t *testing.T, s3c aws.S3API, ssmc aws.SSMAPI) *aws.Controller {
	t.Helper()
	c, err := aws.NewController(aws.WithS3Client(s3c), aws.WithSSMClient(ssmc))
	require.NoError(t, err)
	return c
}

func TestGetSecret(t *testing.T) {
	ssmc := &fakeSSM{values: map[string]string{"/traffic-dash/upstream-url": "https://example.com/traffic.json"}}
	c := newController(t, &fakeS3{}, ssmc)

	v, err := c.GetSecret("/traffic-dash/upstream-url", true)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/traffic.json", *v)
	assert.True(t, ssmc.decrypted)

	_, err = c.GetSecret("/traffic-dash/missing", true)
	assert.Error(t, err)
}

func TestGetS3Object(t *testing.T) {
	c := newController(t, &fakeS3{objects: map[string]string{"assets/static/style.css": "body{}"}}, &fakeSSM{})

	obj, err := c.GetS3Object(context.Background(), "assets", "static/style.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(obj.Body))
	assert.Equal(t, "text/css", obj.ContentType)
	assert.Equal(t, "static/style.css", obj.Key)
	assert.False(t, obj.LastModified.IsZero())

	_, err = c.GetS3Object(context.Background(), "assets", "static/absent.css")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestGetS3ObjectFailure(t *testing.T) {
	testCases := []struct {
		Name     string
		Err      error
		NotExist bool
	}{
		{Name: "no_such_bucket", Err: &smithy.GenericAPIError{Code: "NoSuchBucket"}, NotExist: true},
		{Name: "access_denied", Err: &smithy.GenericAPIError{Code: "AccessDenied"}, NotExist: true},
		{Name: "internal_error", Err: &smithy.GenericAPIError{Code: "InternalError"}},
		{Name: "transport", Err: errors.New("connection reset by peer")},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			c := newController(t, &fakeS3{err: tc.Err}, &fakeSSM{})

			_, err := c.GetS3Object(context.Background(), "assets", "static/style.css")
			require.Error(t, err)
			assert.Equal(t, tc.NotExist, errors.Is(err, fs.ErrNotExist))
		})
	}
}
