package hornql

// Same wire protocol as the server side of connection.go; kept in this
// package so tests and cmd/load can speak to a server without
// duplicating the message types.

import (
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
)

type Client struct {
	WebSocketConn    *websocket.Conn
	URL              string
	NextStatementID  int
	StatementsToSend chan *StatementRequest
	IncomingMessages chan *ChannelMessage
	Channels         map[int]*ClientChannel
}

type StatementRequest struct {
	Statement  string
	ResultChan chan *ClientChannel
}

func NewClient(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	clientConn := &Client{
		NextStatementID:  0,
		WebSocketConn:    conn,
		URL:              url,
		StatementsToSend: make(chan *StatementRequest),
		IncomingMessages: make(chan *ChannelMessage),
		Channels:         map[int]*ClientChannel{},
	}
	go clientConn.handleStatements()
	go clientConn.handleIncoming()
	return clientConn, nil
}

func (conn *Client) Close() error {
	return conn.WebSocketConn.Close()
}

func (conn *Client) handleStatements() {
	for {
		select {
		case request := <-conn.StatementsToSend:
			channel := &ClientChannel{
				Conn:        conn,
				StatementID: conn.NextStatementID,
				Statement:   request.Statement,
				Updates:     make(chan *MessageToClient),
			}
			conn.NextStatementID++
			conn.Channels[channel.StatementID] = channel
			request.ResultChan <- channel
			conn.WebSocketConn.WriteMessage(websocket.TextMessage, []byte(request.Statement))

		case incomingMsg := <-conn.IncomingMessages:
			channel := conn.Channels[incomingMsg.StatementID]
			channel.Updates <- incomingMsg.Message
		}
	}
}

func (conn *Client) handleIncoming() {
	defer conn.WebSocketConn.Close()
	for {
		parsedMessage := &ChannelMessage{}
		if err := conn.WebSocketConn.ReadJSON(&parsedMessage); err != nil {
			return
		}
		conn.IncomingMessages <- parsedMessage
	}
}

type ClientChannel struct {
	Conn        *Client
	StatementID int
	Statement   string
	Updates     chan *MessageToClient
}

func (conn *Client) Statement(statement string) *ClientChannel {
	resultChan := make(chan *ClientChannel)
	conn.StatementsToSend <- &StatementRequest{
		ResultChan: resultChan,
		Statement:  statement,
	}
	return <-resultChan
}

// Query runs a match statement and returns the binding list exactly as
// the server serialized it.
func (conn *Client) Query(query string) (json.RawMessage, error) {
	resultChan := conn.Statement(query)
	update := <-resultChan.Updates
	if update.ErrorMessage != nil {
		return nil, errors.New(*update.ErrorMessage)
	}
	if update.BindingsMessage != nil {
		return update.BindingsMessage, nil
	}
	return nil, errors.New("query result neither error nor bindings")
}

// Exec runs a write statement (or infer) and returns the ack text.
func (conn *Client) Exec(statement string) (string, error) {
	resultChan := conn.Statement(statement)
	update := <-resultChan.Updates
	if update.ErrorMessage != nil {
		return "", errors.New(*update.ErrorMessage)
	}
	if update.AckMessage != nil {
		return *update.AckMessage, nil
	}
	return "", errors.New("exec result neither error nor ack")
}

// Infer runs the rule engine and returns its stats.
func (conn *Client) Infer() (*RunStats, error) {
	resultChan := conn.Statement("infer")
	update := <-resultChan.Updates
	if update.ErrorMessage != nil {
		return nil, errors.New(*update.ErrorMessage)
	}
	if update.InferResultMessage != nil {
		return update.InferResultMessage, nil
	}
	return nil, errors.New("infer result neither error nor stats")
}
