// Package mqtt provides MQTT communication for the bot: event publishing and
// request/response handlers other services can query.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/PancyStudios/VeilleBot/pkg/logger"
)

const (
	requestPrefix  = "veille/request/"
	responsePrefix = "veille/response/"
)

// MqttRequest represents an MQTT request message
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse represents an MQTT response message
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// MqttCommunicator handles MQTT communication
type MqttCommunicator struct {
	client           mqtt.Client
	responseHandlers map[string]func(MqttResponse)
	mu               sync.RWMutex
	clientID         string
}

// NewMqttCommunicator connects to the broker. A failed first connection is
// logged and retried in the background.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	opts := clientOptions(host, port, username, password, clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	mc := newCommunicator(mqtt.NewClient(opts), clientID)

	token := mc.client.Connect()
	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("MQTT connection error: %v", token.Error()), "MQTT")
	}

	return mc
}

// Dial connects once without retrying, for short-lived tools that would
// rather fail than wait for the broker.
func Dial(host, port, username, password, clientID string, timeout time.Duration) (*MqttCommunicator, error) {
	opts := clientOptions(host, port, username, password, clientID).
		SetConnectTimeout(timeout)

	mc := newCommunicator(mqtt.NewClient(opts), clientID)

	token := mc.client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("connection to %s:%s timed out", host, port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("MQTT connection error: %w", err)
	}
	return mc, nil
}

func clientOptions(host, port, username, password, clientID string) *mqtt.ClientOptions {
	uniqueID := fmt.Sprintf("%s_%s", clientID, uuid.New().String())

	return mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(uniqueID).
		SetUsername(username).
		SetPassword(password).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Success(fmt.Sprintf("Connected to MQTT broker as %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(c mqtt.Client, err error) {
			logger.Error(fmt.Sprintf("MQTT connection lost: %v", err), "MQTT")
		})
}

func newCommunicator(client mqtt.Client, clientID string) *MqttCommunicator {
	return &MqttCommunicator{
		client:           client,
		responseHandlers: make(map[string]func(MqttResponse)),
		clientID:         clientID,
	}
}

// Destroy closes the MQTT connection
func (mc *MqttCommunicator) Destroy() {
	if mc.client != nil && mc.client.IsConnected() {
		mc.client.Disconnect(250)
		logger.System("MQTT connection closed.", "MQTT")
	} else {
		logger.Warn("MQTT client was not connected, nothing to close.", "MQTT")
	}
}

// IsConnected returns true if connected to the broker
func (mc *MqttCommunicator) IsConnected() bool {
	return mc.client != nil && mc.client.IsConnected()
}

// Publish sends a message to a topic
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	token := mc.client.Publish(topic, 0, false, jsonData)
	token.Wait()
	return token.Error()
}

// Request publishes payload on the request topic and waits for the
// response carrying the same correlation id. An error set by the responder
// is returned as an error.
func (mc *MqttCommunicator) Request(topic string, payload interface{}, timeout time.Duration) (interface{}, error) {
	correlationID := uuid.New().String()
	responseTopic := fmt.Sprintf("%s%s/%s", responsePrefix, topic, correlationID)

	responses := make(chan MqttResponse, 1)
	mc.mu.Lock()
	mc.responseHandlers[correlationID] = func(r MqttResponse) {
		select {
		case responses <- r:
		default:
		}
	}
	mc.mu.Unlock()

	defer func() {
		mc.mu.Lock()
		delete(mc.responseHandlers, correlationID)
		mc.mu.Unlock()
		mc.client.Unsubscribe(responseTopic)
	}()

	token := mc.client.Subscribe(responseTopic, 0, func(c mqtt.Client, msg mqtt.Message) {
		mc.handleResponse(msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	if err := mc.Publish(requestPrefix+topic, MqttRequest{CorrelationID: correlationID, Payload: payload}); err != nil {
		return nil, err
	}

	select {
	case r := <-responses:
		if r.Error != "" {
			return nil, fmt.Errorf("%s: %s", topic, r.Error)
		}
		return r.Data, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("request to '%s' timed out after %v", topic, timeout)
	}
}

// RequestInto is Request with the response data decoded into out.
func (mc *MqttCommunicator) RequestInto(topic string, payload interface{}, timeout time.Duration, out interface{}) error {
	data, err := mc.Request(topic, payload, timeout)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// handleResponse routes a response to the request waiting on its id.
// Malformed or unexpected responses are dropped.
func (mc *MqttCommunicator) handleResponse(raw []byte) {
	var r MqttResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		logger.Warn(fmt.Sprintf("Error parsing MQTT response: %v", err), "MQTT")
		return
	}

	mc.mu.RLock()
	handler, ok := mc.responseHandlers[r.CorrelationID]
	mc.mu.RUnlock()
	if ok {
		handler(r)
	}
}

// RequestHandler is a function type for handling MQTT requests
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// On registers a handler for a request topic
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) {
	topic := requestPrefix + requestTopic

	token := mc.client.Subscribe(topic, 0, func(c mqtt.Client, msg mqtt.Message) {
		mc.handleRequest(msg.Topic(), msg.Payload(), callback)
	})

	if token.Wait() && token.Error() != nil {
		logger.Error(fmt.Sprintf("Error subscribing to topic %s: %v", topic, token.Error()), "MQTT")
	}
}

// handleRequest decodes one request, runs callback and publishes the response.
func (mc *MqttCommunicator) handleRequest(receivedTopic string, raw []byte, callback RequestHandler) {
	var request MqttRequest
	if err := json.Unmarshal(raw, &request); err != nil {
		logger.Error(fmt.Sprintf("Error parsing MQTT request: %v", err), "MQTT")
		return
	}

	actualTopic := strings.TrimPrefix(receivedTopic, requestPrefix)
	responseTopic := fmt.Sprintf("%s%s/%s", responsePrefix, actualTopic, request.CorrelationID)

	payloadMap := make(map[string]interface{})
	if pm, ok := request.Payload.(map[string]interface{}); ok {
		payloadMap = pm
	}
	payloadMap["_topic"] = actualTopic

	response := MqttResponse{CorrelationID: request.CorrelationID}
	data, err := callback(payloadMap)
	if err != nil {
		response.Error = err.Error()
	} else {
		response.Data = data
	}

	if err := mc.Publish(responseTopic, response); err != nil {
		logger.Warn(fmt.Sprintf("Could not publish response on %s: %v", responseTopic, err), "MQTT")
	}
}
