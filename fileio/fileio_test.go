package fileio

import (
	"context"
	"errors"
	"io"
	"testing"
)

func TestFSReadsFiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemFS()
	if err := store.WriteFile("/warehouse/db/t/data/a.avro", []byte("hello world")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	for _, loc := range []string{"/warehouse/db/t/data/a.avro", "file:///warehouse/db/t/data/a.avro"} {
		t.Run(loc, func(t *testing.T) {
			in, err := store.NewInputFile(loc)
			if err != nil {
				t.Fatalf("NewInputFile() error = %v", err)
			}
			if in.Location() != loc {
				t.Errorf("Location() = %q, want %q", in.Location(), loc)
			}
			size, err := in.Size(ctx)
			if err != nil || size != 11 {
				t.Errorf("Size() = %d, %v; want 11", size, err)
			}

			f, err := in.Open(ctx)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer f.Close()
			buf := make([]byte, 5)
			if _, err := f.ReadAt(buf, 6); err != nil {
				t.Fatalf("ReadAt() error = %v", err)
			}
			if string(buf) != "world" {
				t.Errorf("ReadAt() = %q, want world", buf)
			}
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				t.Fatalf("Seek() error = %v", err)
			}
		})
	}
}

func TestFSMissingFile(t *testing.T) {
	store := NewMemFS()
	in, err := store.NewInputFile("/nope")
	if err != nil {
		t.Fatalf("NewInputFile() error = %v", err)
	}
	if _, err := in.Open(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open() error = %v, want ErrNotFound", err)
	}
	if _, err := in.Size(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Size() error = %v, want ErrNotFound", err)
	}
	if _, err := store.NewInputFile("s3://bucket/key"); !errors.Is(err, ErrUnsupportedScheme) {
		t.Errorf("NewInputFile(s3) error = %v, want ErrUnsupportedScheme", err)
	}
}

func TestParseS3Location(t *testing.T) {
	tests := []struct {
		location   string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"s3://bucket/path/to/file.avro", "bucket", "path/to/file.avro", false},
		{"s3a://b/k", "b", "k", false},
		{"s3://bucket", "", "", true},
		{"s3:///key", "", "", true},
		{"gs://bucket/key", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			bucket, key, err := ParseS3Location(tt.location)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseS3Location() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("ParseS3Location() = %q, %q; want %q, %q", bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	local := NewMemFS()
	remote, err := NewS3(S3Config{Endpoint: "localhost:9000", AccessKeyID: "k", SecretAccessKey: "s"})
	if err != nil {
		t.Fatalf("NewS3() error = %v", err)
	}
	r := NewRouter().Register(local, "", "file").Register(remote, "s3")

	tests := []struct {
		location string
		wantErr  error
	}{
		{"/tmp/a", nil},
		{"file:///tmp/a", nil},
		{"s3://bucket/a", nil},
		{"hdfs://nn/a", ErrUnsupportedScheme},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			in, err := r.NewInputFile(tt.location)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewInputFile() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && in.Location() != tt.location {
				t.Errorf("Location() = %q", in.Location())
			}
		})
	}
}

func TestBytesInputFile(t *testing.T) {
	in := NewBytesInputFile("mem://x", []byte("abc"))
	data, err := ReadAll(context.Background(), in)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "abc" {
		t.Errorf("ReadAll() = %q", data)
	}
	if n, _ := in.Size(context.Background()); n != 3 {
		t.Errorf("Size() = %d, want 3", n)
	}
}
