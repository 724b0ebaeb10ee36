package catalog

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a template document lives so loaders can operate on
// files, fs.FS entries, URLs or S3 objects without leaking implementation
// details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
	SourceKindS3   SourceKind = "s3"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// if the URL is invalid to surface configuration mistakes early.
func SourceFromURL(raw string) Source {
	if raw == "" {
		panic("catalog: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		panic(fmt.Sprintf("catalog: invalid URL %q: %v", raw, err))
	}
	return urlSource{raw: raw}
}

type s3Source struct {
	bucket string
	key    string
}

func (s s3Source) Location() string { return "s3://" + s.bucket + "/" + s.key }
func (s s3Source) Kind() SourceKind { return SourceKindS3 }

// SourceFromS3 returns a Source for an object in an S3 bucket.
func SourceFromS3(bucket, key string) Source {
	return s3Source{bucket: bucket, key: strings.TrimPrefix(key, "/")}
}

// ParseS3Location splits an s3://bucket/key location.
func ParseS3Location(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return "", "", fmt.Errorf("catalog: %q is not an s3 location", location)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("catalog: %q needs a bucket and a key", location)
	}
	return bucket, key, nil
}

// Resolver maps a manifest file name to the Source it is read from.
type Resolver func(name string) Source

// EmbeddedResolver reads manifest entries from the loader's fs.FS.
func EmbeddedResolver() Resolver {
	return func(name string) Source {
		return SourceFromFS(path.Join(BuiltinDir, name))
	}
}

// DirectoryResolver reads manifest entries from dir.
func DirectoryResolver(dir string) Resolver {
	return func(name string) Source {
		return SourceFromFile(filepath.Join(dir, name))
	}
}

// URLResolver reads manifest entries relative to base, mirroring a static
// templates folder served over HTTP.
func URLResolver(base string) Resolver {
	base = strings.TrimRight(base, "/")
	return func(name string) Source {
		return SourceFromURL(base + "/" + url.PathEscape(name))
	}
}

// S3Resolver reads manifest entries under prefix in bucket.
func S3Resolver(bucket, prefix string) Resolver {
	prefix = strings.Trim(prefix, "/")
	return func(name string) Source {
		if prefix == "" {
			return SourceFromS3(bucket, name)
		}
		return SourceFromS3(bucket, prefix+"/"+name)
	}
}
