// Package search mirrors catalog writes into Elasticsearch and answers
// name suggestions from the mirrored index.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/olivere/elastic/v7"
)

type Indexer interface {
	Index(ctx context.Context, id string, doc any) error
	Delete(ctx context.Context, id string) error
}

// Searcher returns the ids of indexed documents whose name starts with
// the typed words, best match first.
type Searcher interface {
	Suggest(ctx context.Context, text string, limit int) ([]string, error)
}

// ErrDisabled is returned by Nop.Suggest; callers fall back to the database.
var ErrDisabled = errors.New("search: no index configured")

// Nop is used when elastic.url is empty.
type Nop struct{}

func (Nop) Index(context.Context, string, any) error { return nil }
func (Nop) Delete(context.Context, string) error     { return nil }

func (Nop) Suggest(context.Context, string, int) ([]string, error) {
	return nil, ErrDisabled
}

type Elastic struct {
	client *elastic.Client
	index  string
}

func NewElastic(url, index string) (*Elastic, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("search: connect %s: %w", url, err)
	}
	log.Printf("[search] elastic index %s at %s", index, url)
	return &Elastic{client: client, index: index}, nil
}

func (e *Elastic) Index(ctx context.Context, id string, doc any) error {
	_, err := e.client.Index().Index(e.index).Id(id).BodyJson(doc).Do(ctx)
	return err
}

func (e *Elastic) Delete(ctx context.Context, id string) error {
	_, err := e.client.Delete().Index(e.index).Id(id).Do(ctx)
	if elastic.IsNotFound(err) {
		return nil
	}
	return err
}

func (e *Elastic) Suggest(ctx context.Context, text string, limit int) ([]string, error) {
	res, err := e.client.Search().Index(e.index).
		Query(elastic.NewMatchPhrasePrefixQuery("name", text)).
		FetchSource(false).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: suggest %q: %w", text, err)
	}
	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.Id)
	}
	return ids, nil
}
