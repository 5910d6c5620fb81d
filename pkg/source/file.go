package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/josegonzalez/dupcheck/pkg/dupcheck"
)

// recordNamespace seeds the deterministic ids given to dataset records without one.
var recordNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("dupcheck/record"))

// Dataset is the on-disk layout of a record pool. JSON documents are accepted
// as well, since JSON is valid YAML.
//
//	leads:
//	  - leadid: lead-1
//	    firstname: John
//	accounts: [...]
//	contacts: [...]
type Dataset struct {
	Leads    []*dupcheck.Lead    `json:"leads,omitempty" yaml:"leads,omitempty"`
	Accounts []*dupcheck.Account `json:"accounts,omitempty" yaml:"accounts,omitempty"`
	Contacts []*dupcheck.Contact `json:"contacts,omitempty" yaml:"contacts,omitempty"`
}

// ParseDataset decodes a dataset and fills in missing record ids.
// An empty document yields an empty dataset.
func ParseDataset(r io.Reader) (*Dataset, error) {
	var ds Dataset
	if err := yaml.NewDecoder(r).Decode(&ds); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding dataset: %w", err)
	}
	ds.assignIDs()
	return &ds, nil
}

func (ds *Dataset) assignIDs() {
	for i, l := range ds.Leads {
		if l != nil && l.LeadID == "" {
			l.LeadID = generatedID(dupcheck.EntityLead, i)
		}
	}
	for i, a := range ds.Accounts {
		if a != nil && a.AccountID == "" {
			a.AccountID = generatedID(dupcheck.EntityAccount, i)
		}
	}
	for i, c := range ds.Contacts {
		if c != nil && c.ContactID == "" {
			c.ContactID = generatedID(dupcheck.EntityContact, i)
		}
	}
}

// generatedID derives a stable id from the entity type and dataset position.
func generatedID(entity dupcheck.EntityType, index int) string {
	return uuid.NewSHA1(recordNamespace, fmt.Appendf(nil, "%s/%d", entity, index)).String()
}

// Records returns the dataset's records of one entity type, in file order.
func (ds *Dataset) Records(entity dupcheck.EntityType) []dupcheck.Record {
	var pool []dupcheck.Record
	switch entity {
	case dupcheck.EntityLead:
		for _, l := range ds.Leads {
			pool = append(pool, l)
		}
	case dupcheck.EntityAccount:
		for _, a := range ds.Accounts {
			pool = append(pool, a)
		}
	case dupcheck.EntityContact:
		for _, c := range ds.Contacts {
			pool = append(pool, c)
		}
	}
	if pool == nil {
		pool = []dupcheck.Record{}
	}
	return pool
}

// DecodeRecord decodes a single record of the given entity type from YAML or JSON.
func DecodeRecord(entity dupcheck.EntityType, data []byte) (dupcheck.Record, error) {
	var r dupcheck.Record
	switch entity {
	case dupcheck.EntityLead:
		r = &dupcheck.Lead{}
	case dupcheck.EntityAccount:
		r = &dupcheck.Account{}
	case dupcheck.EntityContact:
		r = &dupcheck.Contact{}
	default:
		return nil, fmt.Errorf("%w: %q", dupcheck.ErrUnknownEntityType, entity)
	}

	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(r); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding %s record: %w", entity, err)
	}
	return r, nil
}

// FileSource serves the records of a dataset file. The file is read once, when the source is created.
type FileSource struct {
	path    string
	dataset *Dataset
}

// NewFileSource reads and parses the dataset at path.
func NewFileSource(path string, logger *zap.Logger) (*FileSource, error) {
	if path == "" {
		return nil, &dupcheck.ArgumentError{Arg: "path", Details: "must not be empty"}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ParseDataset(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logger.Debug("loaded dataset",
		zap.String("path", path),
		zap.Int("leads", len(ds.Leads)),
		zap.Int("accounts", len(ds.Accounts)),
		zap.Int("contacts", len(ds.Contacts)),
	)

	return &FileSource{path: path, dataset: ds}, nil
}

// Name returns the source name.
func (s *FileSource) Name() string {
	return "file"
}

// Path returns the dataset file path.
func (s *FileSource) Path() string {
	return s.path
}

// Records returns the pool of the entity type.
func (s *FileSource) Records(ctx context.Context, entity dupcheck.EntityType) ([]dupcheck.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.dataset.Records(entity), nil
}

// Close does nothing; the file is closed after loading.
func (s *FileSource) Close() error {
	return nil
}
