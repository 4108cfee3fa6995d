package hornql

import (
	"fmt"
	"net"
	"net/http"
	"testing"
)

func NewTestServer(cfg Config) (*Server, *Client, error) {
	server, err := NewServer(cfg, "127.0.0.1", 0)
	if err != nil {
		return nil, nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, nil, err
	}
	go func() {
		err := server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			panic(err)
		}
	}()

	url := fmt.Sprintf("ws://%s/ws", listener.Addr())
	client, err := NewClient(url)
	if err != nil {
		return nil, nil, err
	}

	return server, client, nil
}

// stmt => expect error or ack
// query => expect error or bindings
type simpleTestStmt struct {
	stmt  string
	query string

	ack      string
	error    string
	bindings string
}

type testServerRef struct {
	server *Server
	client *Client
}

func (tsr *testServerRef) Close() {
	tsr.server.Close()
	tsr.client.Close()
}

// runSimpleTestScript spins up a test server and runs statements on
// it, checking each result.
func runSimpleTestScript(t *testing.T, cases []simpleTestStmt) *testServerRef {
	return runTestScriptWithConfig(t, DefaultConfig(), cases)
}

func runTestScriptWithConfig(t *testing.T, cfg Config, cases []simpleTestStmt) *testServerRef {
	server, client, err := NewTestServer(cfg)
	if err != nil {
		t.Fatal(err)
	}

	for idx, testCase := range cases {
		// Run a statement.
		if testCase.stmt != "" {
			result, err := client.Exec(testCase.stmt)
			if assertError(t, idx, testCase.error, err) {
				continue
			}
			if testCase.ack != "" && result != testCase.ack {
				t.Fatalf(`case %d: expected ack %q; got %q`, idx, testCase.ack, result)
			}
			continue
		}
		// Run a query.
		if testCase.query != "" {
			res, err := client.Query(testCase.query)
			if assertError(t, idx, testCase.error, err) {
				continue
			}
			if string(res) != testCase.bindings {
				t.Fatalf("case %d: expected:\n%s\ngot:\n%s", idx, testCase.bindings, res)
			}
		}
	}

	return &testServerRef{
		server: server,
		client: client,
	}
}

func assertError(t *testing.T, idx int, expected string, got error) bool {
	t.Helper()
	if got != nil {
		if expected == "" {
			t.Fatalf("case %d: unexpected error: %v", idx, got)
		}
		if got.Error() != expected {
			t.Fatalf("case %d: expected error %q; got %q", idx, expected, got.Error())
		}
		return true
	}
	if expected != "" {
		t.Fatalf("case %d: expected error %q; got none", idx, expected)
	}
	return false
}
