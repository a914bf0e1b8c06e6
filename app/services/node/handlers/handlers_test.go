package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/ardanlabs/minichain/app/services/node/handlers"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/events"
	"github.com/ardanlabs/minichain/foundation/logger"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	jsoniter "github.com/json-iterator/go"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type blockResp struct {
	Hash         string `json:"hash"`
	Height       uint64 `json:"height"`
	PrevHash     string `json:"prev_hash"`
	Transactions []struct {
		Hash string `json:"hash"`
		From string `json:"from"`
	} `json:"transactions"`
}

func digestHex(b byte) string {
	var d signature.Digest
	for i := range d {
		d[i] = b
	}
	return d.Hex()
}

func newApp(t *testing.T) (http.Handler, *state.State) {
	t.Helper()

	log, err := logger.New("TEST", os.DevNull)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a logger: %v", failed, err)
	}

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to open memory storage: %v", failed, err)
	}

	st, err := state.New(state.Config{
		Genesis: genesis.Default(),
		Storage: strg,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	ns, err := nameservice.New(t.TempDir())
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
	}

	app := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      log,
		State:    st,
		NS:       ns,
		Evts:     events.New(),
	})

	return app, st
}

func Test_MineEndpoint(t *testing.T) {
	t.Log("Given the need to mine transactions over HTTP.")
	{
		app, st := newApp(t)
		defer st.Shutdown()

		for i, pair := range [][2]byte{{2, 3}, {4, 5}} {
			body := `{"transactions":[{"from":"` + digestHex(pair[0]) + `","to":"` + digestHex(pair[1]) + `","amount":3,"fee":1}]}`

			r := httptest.NewRequest(http.MethodPost, "/v1/tx/mine", strings.NewReader(body))
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tShould be able to mine blk[%d]: %d %s", failed, i+1, w.Code, w.Body.String())
			}
			t.Logf("\t%s\tShould be able to mine blk[%d].", success, i+1)
		}

		r := httptest.NewRequest(http.MethodGet, "/v1/blocks/list", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		var blocks []blockResp
		if err := json.Unmarshal(w.Body.Bytes(), &blocks); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the block list: %v", failed, err)
		}

		if len(blocks) != 3 || blocks[2].Height != 2 || blocks[2].PrevHash != blocks[1].Hash {
			t.Fatalf("\t%s\tShould list genesis and the two mined blocks: %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould list genesis and the two mined blocks.", success)

		tail := blocks[2]
		r = httptest.NewRequest(http.MethodGet, "/v1/blocks/"+tail.Hash+"/proof/"+tail.Transactions[1].Hash, nil)
		w = httptest.NewRecorder()
		app.ServeHTTP(w, r)

		var p struct {
			Verified bool `json:"verified"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil || !p.Verified {
			t.Fatalf("\t%s\tShould get a verified merkle proof: %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould get a verified merkle proof.", success)
	}
}

func Test_Errors(t *testing.T) {
	type table struct {
		name   string
		method string
		path   string
		body   string
		status int
	}

	tt := []table{
		{name: "badhash", method: http.MethodGet, path: "/v1/blocks/0x1234", status: http.StatusBadRequest},
		{name: "notfound", method: http.MethodGet, path: "/v1/blocks/" + digestHex(9), status: http.StatusNotFound},
		{name: "badjson", method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":`, status: http.StatusBadRequest},
		{name: "fields", method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":"0x01","to":"0x02"}`, status: http.StatusBadRequest},
		{name: "coinbase", method: http.MethodPost, path: "/v1/tx/submit", body: `{"from":"` + digestHex(0) + `","to":"` + digestHex(1) + `"}`, status: http.StatusBadRequest},
		{name: "minecoinbase", method: http.MethodPost, path: "/v1/tx/mine", body: `{"transactions":[{"from":"` + digestHex(0) + `","to":"` + digestHex(1) + `"}]}`, status: http.StatusBadRequest},
	}

	t.Log("Given the need to report request errors.")
	{
		app, st := newApp(t)
		defer st.Shutdown()

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					r := httptest.NewRequest(tst.method, tst.path, bytes.NewBufferString(tst.body))
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d: %s", failed, testID, tst.status, w.Code, w.Body.String())
					}
					t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)
				}

				t.Run(tst.name, f)
			}
		}

		if cur := st.Cursor(); cur.TailHeight != 0 {
			t.Fatalf("\t%s\tShould not mine anything for rejected requests, got height %d.", failed, cur.TailHeight)
		}
		t.Logf("\t%s\tShould not mine anything for rejected requests.", success)
	}
}

func Test_Submit(t *testing.T) {
	t.Log("Given the need to submit transactions to the mempool.")
	{
		app, st := newApp(t)
		defer st.Shutdown()

		body := `{"from":"` + digestHex(2) + `","to":"` + digestHex(3) + `","amount":3,"fee":1,"nonce":1,"sign":"sign"}`
		r := httptest.NewRequest(http.MethodPost, "/v1/tx/submit", strings.NewReader(body))
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould be able to submit: %d %s", failed, w.Code, w.Body.String())
		}
		t.Logf("\t%s\tShould be able to submit.", success)

		if st.QueryMempoolLength() != 1 {
			t.Fatalf("\t%s\tShould hold the transaction in the mempool.", failed)
		}
		t.Logf("\t%s\tShould hold the transaction in the mempool.", success)

		r = httptest.NewRequest(http.MethodGet, "/v1/chain/status", nil)
		w = httptest.NewRecorder()
		app.ServeHTTP(w, r)

		var status struct {
			TailHeight  uint64 `json:"tail_height"`
			Uncommitted int    `json:"uncommitted"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil || status.Uncommitted != 1 || status.TailHeight != 0 {
			t.Fatalf("\t%s\tShould report the chain status: %s", failed, w.Body.String())
		}
		t.Logf("\t%s\tShould report the chain status.", success)
	}
}

func Test_Viewer(t *testing.T) {
	app, st := newApp(t)
	defer st.Shutdown()

	t.Log("Given the need to load the chain viewer page.")
	{
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("\t%s\tShould receive an html page : %s", failed, ct)
		}
		t.Logf("\t%s\tShould receive an html page.", success)

		if !strings.Contains(w.Body.String(), "/v1/events") {
			t.Fatalf("\t%s\tShould follow the events stream.", failed)
		}
		t.Logf("\t%s\tShould follow the events stream.", success)
	}
}

func Test_Registry(t *testing.T) {
	_, st := newApp(t)
	defer st.Shutdown()

	t.Log("Given the need to expose chain and event metrics.")
	{
		log, err := logger.New("TEST", os.DevNull)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct a logger: %v", failed, err)
		}

		evts := events.New()
		defer evts.Shutdown()

		evts.Acquire("slow")
		for range 101 {
			evts.Send("viewer: block")
		}

		reg, err := handlers.Registry(st, evts)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to build the registry: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to build the registry.", success)

		r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		w := httptest.NewRecorder()
		handlers.DebugMux("test", log, st, reg).ServeHTTP(w, r)

		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould receive a status code of 200 : %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould receive a status code of 200.", success)

		body := w.Body.String()
		for _, line := range []string{
			"minichain_events_subscribers 1",
			"minichain_events_sent_total 100",
			"minichain_events_dropped_total 1",
			"minichain_chain_tail_height 0",
		} {
			if !strings.Contains(body, line) {
				t.Fatalf("\t%s\tShould report %q.", failed, line)
			}
		}
		t.Logf("\t%s\tShould report the event and chain metrics.", success)
	}
}
