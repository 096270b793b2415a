package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/pricetrack/internal/adapters/http/api"
	"github.com/okian/pricetrack/internal/adapters/identity"
	"github.com/okian/pricetrack/internal/adapters/testbackend"
	"github.com/okian/pricetrack/internal/adapters/tracker"
	service "github.com/okian/pricetrack/internal/app"
	"github.com/okian/pricetrack/internal/domain/marketplace"
	"github.com/okian/pricetrack/internal/domain/model"
	"github.com/okian/pricetrack/internal/tracking"
	"github.com/okian/pricetrack/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const email = "user@example.com"

type mockStatsProvider struct {
	stats service.Stats
}

func (m *mockStatsProvider) Stats() service.Stats {
	return m.stats
}

// mockDependencies returns canned results and records what it was asked.
type mockDependencies struct {
	snapErr   error
	addErr    error
	addOut    tracking.AddOutcome
	deletedID model.ItemID
	closed    bool
	lastUser  identity.Identity
}

func (m *mockDependencies) Snapshot(_ context.Context, user identity.Identity) (api.Snapshot, error) {
	m.lastUser = user
	return api.Snapshot{User: user}, m.snapErr
}

func (m *mockDependencies) Refresh(_ context.Context, user identity.Identity) (api.Snapshot, error) {
	return api.Snapshot{User: user}, m.snapErr
}

func (m *mockDependencies) Add(_ context.Context, user identity.Identity, _ string) (tracking.AddOutcome, api.Snapshot, error) {
	return m.addOut, api.Snapshot{User: user}, m.addErr
}

func (m *mockDependencies) Delete(_ context.Context, user identity.Identity, id model.ItemID) (api.Snapshot, error) {
	m.deletedID = id
	return api.Snapshot{User: user}, nil
}

func (m *mockDependencies) Normalize(_ context.Context, raw string) (marketplace.ProductRef, error) {
	return marketplace.Normalize(raw)
}

func (m *mockDependencies) Close(_ context.Context, _ string) bool {
	m.closed = true
	return true
}

func do(mux *http.ServeMux, method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set(identity.HeaderEmail, email)
		req.Header.Set(identity.HeaderName, "User")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		provider := &mockStatsProvider{stats: service.Stats{Started: true, Sessions: 2}}
		server := api.NewServer(deps, provider)
		mux := http.NewServeMux()
		server.Register(mux)

		Convey("When calling the ops endpoints", func() {
			health := do(mux, "GET", "/healthz", "", false)
			stats := do(mux, "GET", "/stats", "", false)
			prom := do(mux, "GET", "/metrics", "", false)

			Convey("Then they are served without identity", func() {
				So(health.Code, ShouldEqual, http.StatusOK)
				So(decode(health)["status"], ShouldEqual, "ok")
				So(stats.Code, ShouldEqual, http.StatusOK)
				So(decode(stats)["sessions"], ShouldEqual, float64(2))
				So(prom.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the registry has not started", func() {
			provider.stats = service.Stats{}
			health := do(mux, "GET", "/healthz", "", false)

			Convey("Then health reports unavailable", func() {
				So(health.Code, ShouldEqual, http.StatusServiceUnavailable)
				So(decode(health)["status"], ShouldEqual, "starting")
			})
		})

		Convey("When a collection route is called without identity", func() {
			w := do(mux, "GET", "/items", "", false)

			Convey("Then it is rejected with the log-in message", func() {
				So(w.Code, ShouldEqual, http.StatusUnauthorized)
				So(decode(w)["message"], ShouldEqual, tracking.MsgMissingIdentity)
			})
		})

		Convey("When listing with identity", func() {
			w := do(mux, "GET", "/items", "", true)

			Convey("Then the resolved user is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastUser.Email, ShouldEqual, email)
				So(deps.lastUser.DisplayName, ShouldEqual, "User")
			})
		})

		Convey("When adding with a malformed body", func() {
			w := do(mux, "POST", "/items", "{", true)
			empty := do(mux, "POST", "/items", `{"url":"  "}`, true)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(w)["code"], ShouldEqual, "bad_request")
				So(empty.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(empty)["message"], ShouldContainSubstring, "missing url")
			})
		})

		Convey("When the add is a duplicate", func() {
			deps.addErr = &tracking.Error{Op: "add", Kind: tracking.ErrDuplicateItem, Message: tracking.MsgDuplicateItem}
			w := do(mux, "POST", "/items", `{"url":"https://www.ebay.com/itm/1"}`, true)

			Convey("Then it maps to 409 with the user message", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["code"], ShouldEqual, "duplicate")
				So(decode(w)["message"], ShouldEqual, tracking.MsgDuplicateItem)
			})
		})

		Convey("When the add succeeds but the refresh fails", func() {
			deps.addOut = tracking.AddOutcome{
				Message:    tracking.MsgAdded,
				RefreshErr: &tracking.Error{Op: "list", Kind: tracking.ErrTransport, Message: tracking.MsgListFailed},
			}
			w := do(mux, "POST", "/items", `{"url":"https://www.ebay.com/itm/1"}`, true)

			Convey("Then the add is reported as created with a refresh warning", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(decode(w)["message"], ShouldEqual, tracking.MsgAdded)
				So(decode(w)["refresh_error"], ShouldEqual, tracking.MsgListFailed)
			})
		})

		Convey("When the registry is busy", func() {
			deps.snapErr = tracking.ErrBusy
			w := do(mux, "POST", "/items/refresh", "", true)

			Convey("Then it maps to 409 busy", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode(w)["code"], ShouldEqual, "busy")
			})
		})

		Convey("When deleting an item", func() {
			w := do(mux, "DELETE", "/items/42", "", true)

			Convey("Then the path id is used", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.deletedID, ShouldEqual, model.ItemID("42"))
				So(decode(w)["message"], ShouldEqual, tracking.MsgDeleted)
			})
		})

		Convey("When normalizing", func() {
			ok := do(mux, "GET", "/normalize?url=https%3A%2F%2Fwww.amazon.com%2FX%2Fdp%2FB08N5WRWNW%2Fref%3Dsr", "", false)
			bad := do(mux, "GET", "/normalize?url=https%3A%2F%2Fwww.walmart.com%2Fip%2F123", "", false)
			missing := do(mux, "GET", "/normalize", "", false)

			Convey("Then canonical references and errors are rendered", func() {
				So(ok.Code, ShouldEqual, http.StatusOK)
				So(decode(ok)["canonical_url"], ShouldEqual, "https://www.amazon.com/dp/B08N5WRWNW")
				So(bad.Code, ShouldEqual, http.StatusBadRequest)
				So(decode(bad)["message"], ShouldEqual, tracking.MsgUnsupported)
				So(missing.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When calling me and logout", func() {
			me := do(mux, "GET", "/me", "", true)
			out := do(mux, "POST", "/logout", "", true)

			Convey("Then identity is echoed and the session closed", func() {
				So(decode(me)["email"], ShouldEqual, email)
				So(out.Code, ShouldEqual, http.StatusOK)
				So(deps.closed, ShouldBeTrue)
			})
		})

		Convey("When the wrong method is used", func() {
			w := do(mux, "PUT", "/items", "", true)

			Convey("Then the mux refuses it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestGatewayEndToEnd(t *testing.T) {
	Convey("Given the gateway over a fake tracking service", t, func() {
		ctx := context.Background()
		fake := testbackend.New(testbackend.WithUsers(email))
		backend := httptest.NewServer(fake.Handler())
		defer backend.Close()

		svc := service.New(tracker.New(backend.URL), service.WithLogger(logger.Nop()))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(mux)

		Convey("When a user adds, lists and deletes an item", func() {
			add := do(mux, "POST", "/items", `{"url":"https://www.ebay.com/itm/123456789012?hash=abc"}`, true)
			list := do(mux, "GET", "/items", "", true)

			var snap service.Snapshot
			So(json.Unmarshal(list.Body.Bytes(), &snap), ShouldBeNil)

			Convey("Then the collection round-trips through the service", func() {
				So(add.Code, ShouldEqual, http.StatusCreated)
				So(len(snap.Items), ShouldEqual, 1)
				So(snap.Items[0].URL, ShouldEqual, "https://ebay.com/itm/123456789012")
				So(snap.Items[0].LastChecked, ShouldEqual, "Just now")

				del := do(mux, "DELETE", "/items/"+string(snap.Items[0].ID), "", true)
				So(del.Code, ShouldEqual, http.StatusOK)
				So(fake.Items(email), ShouldBeEmpty)
			})
		})

		Convey("When the service fails internally", func() {
			fake.FailNext(tracker.PathAmazonSubmit, http.StatusInternalServerError, "SQLSTATE[HY000] secret detail")
			w := do(mux, "POST", "/items", `{"url":"https://www.amazon.com/dp/B08N5WRWNW"}`, true)

			Convey("Then the raw text stays server side", func() {
				So(w.Code, ShouldEqual, http.StatusBadGateway)
				So(decode(w)["message"], ShouldEqual, tracking.MsgInternalService)
				So(w.Body.String(), ShouldNotContainSubstring, "secret")
			})
		})
	})
}
