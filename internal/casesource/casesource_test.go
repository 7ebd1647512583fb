package casesource_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/casesource"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
)

type caseRow struct {
	sid, trackingID, sourceCode, status, contactID string
}

type docRow struct {
	sid         string
	documentID  int
	docType     string
	pageCount   int
	dateCreated time.Time
}

type fakeDB struct {
	cases []caseRow
	docs  []docRow
}

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	newStatus, sid, contactID := args[0].(string), args[1].(string), args[2].(string)
	for i := range f.cases {
		if f.cases[i].sid == sid && f.cases[i].contactID == contactID {
			f.cases[i].status = newStatus
		}
	}
	return 1, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) (ports.Row, error) {
	return ports.Row{}, nil
}

func (f *fakeDB) Query(ctx context.Context, query string, args ...any) ([]ports.Row, error) {
	switch {
	case strings.Contains(query, "from asap_case_status cs"):
		contactID := args[0].(string)
		statuses := map[string]bool{}
		for _, a := range args[1:] {
			statuses[a.(string)] = true
		}
		var out []ports.Row
		for _, c := range f.cases {
			if c.contactID == contactID && statuses[c.status] {
				out = append(out, ports.Row{
					"sid":         c.sid,
					"trackingid":  c.trackingID,
					"source_code": c.sourceCode,
				})
			}
		}
		return out, nil
	case strings.Contains(query, "from tbldocuments d"):
		sid := args[0].(string)
		var out []ports.Row
		for _, d := range f.docs {
			if d.sid == sid {
				out = append(out, ports.Row{
					"documentid":          int64(d.documentID),
					"documenttypename":    d.docType,
					"pagecount":           int64(d.pageCount),
					"documentdatecreated": d.dateCreated,
				})
			}
		}
		return out, nil
	default:
		return nil, nil
	}
}

func billableContact() *model.Contact {
	return &model.Contact{
		ContactID: "c1",
		DocTypeBillingMap: map[string]model.BillingCode{
			"DEC": model.BillingCodeBill,
		},
	}
}

func TestExportedCasesIncludesRestagePending(t *testing.T) {
	db := &fakeDB{cases: []caseRow{
		{sid: "S1", trackingID: "T1", sourceCode: "lims", status: "EXPORTED", contactID: "c1"},
		{sid: "S2", trackingID: "T2", sourceCode: "lims", status: "RESTAGE_PENDING", contactID: "c1"},
		{sid: "S3", trackingID: "T3", sourceCode: "lims", status: "STAGED", contactID: "c1"},
		{sid: "S4", trackingID: "T4", sourceCode: "lims", status: "EXPORTED", contactID: "other"},
	}}
	src := casesource.New(db)
	contact := billableContact()

	cases, err := src.ExportedCases(context.Background(), contact)
	require.NoError(t, err)
	var sids []string
	for _, c := range cases {
		sids = append(sids, c.Sid)
	}
	assert.ElementsMatch(t, []string{"S1", "S2"}, sids)
}

func TestIndexedCasesAssemblesDocuments(t *testing.T) {
	db := &fakeDB{
		cases: []caseRow{{sid: "S1", trackingID: "T1", sourceCode: "lims", status: "INDEXED", contactID: "c1"}},
		docs: []docRow{
			{sid: "S1", documentID: 1, docType: "DEC", pageCount: 2, dateCreated: time.Now()},
		},
	}
	src := casesource.New(db)
	contact := billableContact()

	cases, err := src.IndexedCases(context.Background(), contact)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, []int{1}, cases[0].DocumentIDs())
}

func TestRestageUpdatesStatus(t *testing.T) {
	db := &fakeDB{cases: []caseRow{{sid: "S1", trackingID: "T1", sourceCode: "lims", status: "EXPORTED", contactID: "c1"}}}
	src := casesource.New(db)
	contact := billableContact()
	c := model.NewCase("S1", "T1", "lims", contact)

	require.NoError(t, src.Restage(context.Background(), c))
	assert.Equal(t, "RESTAGE_PENDING", db.cases[0].status)
}

func TestMarkIndexedAndMarkStaged(t *testing.T) {
	db := &fakeDB{cases: []caseRow{{sid: "S1", trackingID: "T1", sourceCode: "lims", status: "EXPORTED", contactID: "c1"}}}
	src := casesource.New(db)
	contact := billableContact()
	c := model.NewCase("S1", "T1", "lims", contact)

	require.NoError(t, src.MarkIndexed(context.Background(), c))
	assert.Equal(t, "INDEXED", db.cases[0].status)

	require.NoError(t, src.MarkStaged(context.Background(), c))
	assert.Equal(t, "STAGED", db.cases[0].status)
}
