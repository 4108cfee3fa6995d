package hornql

import (
	"context"
	"encoding/json"
	"fmt"

	clog "github.com/hornql/hornql/pkg/log"
)

// channel is one statement's lifetime on a connection. Statement ids
// are unique within their connection and tag every reply, so a client
// can pipeline statements and correlate answers.
type channel struct {
	connection   *connection
	rawStatement string
	id           int

	context context.Context
}

func (channel *channel) Ctx() context.Context {
	return channel.context
}

func newChannel(rawStatement string, ID int, conn *connection) *channel {
	ctx := context.WithValue(conn.Ctx(), clog.StmtIDKey, ID)
	return &channel{
		connection:   conn,
		rawStatement: rawStatement,
		id:           ID,
		context:      ctx,
	}
}

func (channel *channel) handleStatement() {
	defer channel.connection.removeChannel(channel)

	statement, err := Parse(channel.rawStatement)
	if err != nil {
		clog.Printf(channel, "parse error: %v", err)
		channel.writeErrorMessage(err)
		return
	}
	result, err := channel.connection.database.executeStatement(statement, channel)
	if err != nil {
		clog.Printf(channel, "%v", err)
		channel.writeErrorMessage(err)
		return
	}
	channel.writeResult(result)
}

type ChannelMessage struct {
	StatementID int
	Message     *MessageToClient
}

type MessageToClientType int

const (
	ErrorMessage MessageToClientType = iota
	AckMessage
	BindingsMessage
	InferResultMessage
)

func (m MessageToClientType) String() string {
	switch m {
	case ErrorMessage:
		return "error"
	case AckMessage:
		return "ack"
	case BindingsMessage:
		return "bindings"
	case InferResultMessage:
		return "infer_result"
	}
	panic(fmt.Errorf("unknown message type %d", m))
}

func (m MessageToClientType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *MessageToClientType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "error":
		*m = ErrorMessage
	case "ack":
		*m = AckMessage
	case "bindings":
		*m = BindingsMessage
	case "infer_result":
		*m = InferResultMessage
	default:
		return fmt.Errorf("unknown message type %q", text)
	}
	return nil
}

// MessageToClient is one reply frame. Bindings stay raw JSON on the
// client side so tests can compare the exact bytes the server sent.
type MessageToClient struct {
	Type         MessageToClientType `json:"type"`
	ErrorMessage *string             `json:"error,omitempty"`
	AckMessage   *string             `json:"ack,omitempty"`

	BindingsMessage    json.RawMessage `json:"bindings,omitempty"`
	InferResultMessage *RunStats       `json:"infer_result,omitempty"`
}

// stmtResult is what executing a statement produced, before it is
// framed for the wire.
type stmtResult struct {
	ack      string
	bindings []Binding
	stats    *RunStats
}

func (channel *channel) writeResult(result *stmtResult) {
	switch {
	case result.bindings != nil:
		data, err := json.Marshal(result.bindings)
		if err != nil {
			channel.writeErrorMessage(err)
			return
		}
		channel.writeMessage(&MessageToClient{
			Type:            BindingsMessage,
			BindingsMessage: data,
		})
	case result.stats != nil:
		ack := result.ack
		channel.writeMessage(&MessageToClient{
			Type:               InferResultMessage,
			AckMessage:         &ack,
			InferResultMessage: result.stats,
		})
	default:
		ack := result.ack
		channel.writeMessage(&MessageToClient{
			Type:       AckMessage,
			AckMessage: &ack,
		})
	}
}

func (channel *channel) writeErrorMessage(err error) {
	errStr := err.Error()
	channel.writeMessage(&MessageToClient{
		Type:         ErrorMessage,
		ErrorMessage: &errStr,
	})
}

func (channel *channel) writeMessage(message *MessageToClient) {
	channel.connection.messages <- &ChannelMessage{
		StatementID: channel.id,
		Message:     message,
	}
}
