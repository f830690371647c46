package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/injector/internal/errors"
)

type putCall struct {
	bucket, key, contentType, cacheControl string
	body                                   string
}

type fakeClient struct {
	calls  []putCall
	failOn string
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	key := aws.ToString(in.Key)
	if key == f.failOn {
		return nil, fmt.Errorf("access denied")
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{
		bucket:       aws.ToString(in.Bucket),
		key:          key,
		contentType:  aws.ToString(in.ContentType),
		cacheControl: aws.ToString(in.CacheControl),
		body:         string(body),
	})
	return &s3.PutObjectOutput{}, nil
}

func writeArtifacts(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.build.js":   "var a=1;",
		"site.build.css": "body{margin:0}",
		"manifest.json":  "{}",
	}
	var paths []string
	for _, name := range []string{"app.build.js", "site.build.css", "manifest.json"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(files[name]), 0644))
		paths = append(paths, p)
	}
	return dir, paths
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(&fakeClient{}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New("E152"))
}

func TestPublish(t *testing.T) {
	_, paths := writeArtifacts(t)
	client := &fakeClient{}
	p, err := New(client, Options{Bucket: "cdn", Prefix: "assets/", CacheControl: "public, max-age=60"})
	require.NoError(t, err)

	objects, err := p.Publish(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, objects, 3)
	require.Len(t, client.calls, 3)

	assert.Equal(t, putCall{
		bucket:       "cdn",
		key:          "assets/app.build.js",
		contentType:  "text/javascript; charset=utf-8",
		cacheControl: "public, max-age=60",
		body:         "var a=1;",
	}, client.calls[0])
	assert.Equal(t, "text/css; charset=utf-8", client.calls[1].contentType)
	assert.Equal(t, "assets/manifest.json", client.calls[2].key)
	assert.Equal(t, "application/json", client.calls[2].contentType)
	assert.Equal(t, int64(len("var a=1;")), objects[0].Size)
}

func TestPublish_NoPrefixNoCacheControl(t *testing.T) {
	_, paths := writeArtifacts(t)
	client := &fakeClient{}
	p, err := New(client, Options{Bucket: "cdn"})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), paths[:1])
	require.NoError(t, err)
	assert.Equal(t, "app.build.js", client.calls[0].key)
	assert.Empty(t, client.calls[0].cacheControl)
}

func TestPublish_StopsAtFirstFailure(t *testing.T) {
	_, paths := writeArtifacts(t)
	client := &fakeClient{failOn: "assets/site.build.css"}
	p, err := New(client, Options{Bucket: "cdn", Prefix: "assets"})
	require.NoError(t, err)

	objects, err := p.Publish(context.Background(), paths)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.New("E150"))
	assert.Contains(t, err.Error(), "access denied")
	assert.Len(t, objects, 1)
	assert.Len(t, client.calls, 1)
}

func TestPublish_MissingFile(t *testing.T) {
	p, err := New(&fakeClient{}, Options{Bucket: "cdn"})
	require.NoError(t, err)

	_, err = p.Publish(context.Background(), []string{filepath.Join(t.TempDir(), "gone.build.js")})
	assert.ErrorIs(t, err, errors.New("E150"))
}
