package osv

import (
	"context"
	"fmt"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/upd/internal/domain/entities"
	"github.com/rios0rios0/upd/internal/domain/repositories"
	"github.com/rios0rios0/upd/internal/infrastructure/repositories/httpclient"
)

const (
	defaultAPIURL       = "https://api.osv.dev/v1"
	vulnerabilityWebURL = "https://osv.dev/vulnerability/"
	batchSize           = 1000
	detailConcurrency   = 20
)

// OSVVulnerabilityRepository queries the OSV database in batches and enriches
// every advisory with its details.
type OSVVulnerabilityRepository struct {
	client *httpclient.Client
	apiURL string
}

var _ repositories.VulnerabilityRepository = (*OSVVulnerabilityRepository)(nil)

// NewOSVVulnerabilityRepository creates a client for the public OSV API.
func NewOSVVulnerabilityRepository() *OSVVulnerabilityRepository {
	return NewOSVVulnerabilityRepositoryWithURL(defaultAPIURL)
}

// NewOSVVulnerabilityRepositoryWithURL creates a client for an OSV compatible API.
func NewOSVVulnerabilityRepositoryWithURL(apiURL string) *OSVVulnerabilityRepository {
	return &OSVVulnerabilityRepository{
		client: httpclient.NewClient(httpclient.Options{}),
		apiURL: strings.TrimRight(apiURL, "/"),
	}
}

type queryPackage struct {
	Name      string `json:"name"`
	Ecosystem string `json:"ecosystem"`
}

type query struct {
	Package queryPackage `json:"package"`
	Version string       `json:"version"`
}

type batchRequest struct {
	Queries []query `json:"queries"`
}

type batchResponse struct {
	Results []struct {
		Vulns []struct {
			ID string `json:"id"`
		} `json:"vulns"`
	} `json:"results"`
}

type vulnerabilityDocument struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Severity []struct {
		Type  string `json:"type"`
		Score string `json:"score"`
	} `json:"severity"`
	DatabaseSpecific map[string]any `json:"database_specific"`
	Affected         []struct {
		Ranges []struct {
			Events []struct {
				Fixed string `json:"fixed"`
			} `json:"events"`
		} `json:"ranges"`
	} `json:"affected"`
	References []struct {
		URL string `json:"url"`
	} `json:"references"`
}

func (doc vulnerabilityDocument) toEntity() entities.Vulnerability {
	vuln := entities.Vulnerability{ID: doc.ID, Summary: doc.Summary}
	if len(doc.Severity) > 0 {
		vuln.Severity = doc.Severity[0].Score
	} else if s, ok := doc.DatabaseSpecific["severity"].(string); ok {
		vuln.Severity = s
	}
	if len(doc.Affected) > 0 && len(doc.Affected[0].Ranges) > 0 {
		for _, event := range doc.Affected[0].Ranges[0].Events {
			if event.Fixed != "" {
				vuln.FixedVersion = event.Fixed
				break
			}
		}
	}
	if len(doc.References) > 0 {
		vuln.URL = doc.References[0].URL
	} else {
		vuln.URL = vulnerabilityWebURL + doc.ID
	}
	return vuln
}

// CheckPackages audits packages. A failed batch is recorded in the result
// errors and the remaining batches still run.
func (it *OSVVulnerabilityRepository) CheckPackages(
	ctx context.Context,
	packages []entities.AuditPackage,
) (entities.AuditResult, error) {
	result := entities.AuditResult{}
	for start := 0; start < len(packages); start += batchSize {
		end := min(start+batchSize, len(packages))
		chunk := packages[start:end]
		found, err := it.queryBatch(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Batch query failed: %v", err))
			continue
		}
		for i, pkg := range chunk {
			if len(found[i]) == 0 {
				result.SafeCount++
				continue
			}
			result.Vulnerable = append(result.Vulnerable, entities.PackageAuditResult{
				Package:         pkg,
				Vulnerabilities: found[i],
			})
		}
	}
	return result, nil
}

func (it *OSVVulnerabilityRepository) queryBatch(
	ctx context.Context,
	packages []entities.AuditPackage,
) ([][]entities.Vulnerability, error) {
	request := batchRequest{Queries: make([]query, len(packages))}
	for i, pkg := range packages {
		request.Queries[i] = query{
			Package: queryPackage{Name: pkg.Name, Ecosystem: pkg.Lang.Ecosystem()},
			Version: pkg.Version,
		}
	}
	var response batchResponse
	if err := it.client.PostJSON(ctx, it.apiURL+"/querybatch", request, &response); err != nil {
		return nil, err
	}

	var ids []string
	for _, res := range response.Results {
		for _, v := range res.Vulns {
			ids = append(ids, v.ID)
		}
	}
	details := it.fetchDetails(ctx, ids)

	found := make([][]entities.Vulnerability, len(packages))
	for i, res := range response.Results {
		if i >= len(packages) {
			break
		}
		for _, v := range res.Vulns {
			found[i] = append(found[i], details[v.ID])
		}
	}
	return found, nil
}

// fetchDetails loads each distinct advisory once. Advisories that cannot be
// fetched keep their id and a link to the OSV page.
func (it *OSVVulnerabilityRepository) fetchDetails(ctx context.Context, ids []string) map[string]entities.Vulnerability {
	details := make(map[string]entities.Vulnerability, len(ids))
	var mu sync.Mutex
	group := new(errgroup.Group)
	group.SetLimit(detailConcurrency)
	for _, id := range ids {
		mu.Lock()
		_, done := details[id]
		if !done {
			details[id] = entities.Vulnerability{ID: id, URL: vulnerabilityWebURL + id}
		}
		mu.Unlock()
		if done {
			continue
		}
		group.Go(func() error {
			var doc vulnerabilityDocument
			if err := it.client.GetJSON(ctx, it.apiURL+"/vulns/"+id, nil, &doc); err != nil {
				logger.Debugf("[osv] Failed to fetch %s: %v", id, err)
				return nil
			}
			if doc.ID == "" {
				doc.ID = id
			}
			mu.Lock()
			details[id] = doc.toEntity()
			mu.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return details
}
