// based on https://www.hyperledger.org/blog/2019/02/19/hyperledger-sawtooth-events-in-go-2
package events

import (
	"sync"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/sawtooth-sdk-go/messaging"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/client_event_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/events_pb2"
	"github.com/hyperledger/sawtooth-sdk-go/protobuf/validator_pb2"
	"github.com/pebbe/zmq4"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Handler consumes the data of one event
type Handler func(data []byte) error

type EventListener struct {
	log           *zap.Logger
	connection    messaging.Connection
	validatorUrl  string
	closerFunc    []func() error
	handlers      map[string]Handler
	stopListening chan struct{}
	wg            *sync.WaitGroup
}

// NewEventListener creates a listener of the validator component endpoint,
// e.g. tcp://localhost:4004
func NewEventListener(logger *zap.Logger, validatorUrl string) *EventListener {
	return &EventListener{
		log:          logger,
		validatorUrl: validatorUrl,
		handlers:     make(map[string]Handler),
		wg:           &sync.WaitGroup{},
	}
}

func (e *EventListener) Start() error {
	zmqContext, err := zmq4.NewContext()
	if err != nil {
		return err
	}

	zmqConnection, err := messaging.NewConnection(
		zmqContext,
		zmq4.DEALER,
		e.validatorUrl,
		false,
	)
	if err != nil {
		return errors.Wrap(err, "failed to connect to the validator")
	}
	e.connection = zmqConnection

	for eventType := range e.handlers {
		if err := e.subscribeToEvent(eventType); err != nil {
			e.log.Error("error when subscribing to event "+eventType, zap.Error(err))
		}
	}

	e.stopListening = make(chan struct{})
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.listenLoop(e.stopListening); err != nil {
			e.log.Error("event listener stopped", zap.Error(err))
		}
	}()

	return nil
}

func (e *EventListener) Stop() error {
	if e.stopListening == nil {
		return nil
	}
	close(e.stopListening)

	var allErr error
	for _, close := range e.closerFunc {
		if err := close(); err != nil {
			allErr = multierr.Append(allErr, err)
		}
	}
	e.connection.Close()
	e.log.Info("waiting for the event handlers to finish...")
	e.wg.Wait()
	e.log.Info("event listener handlers finished")

	return allErr
}

func (e *EventListener) listenLoop(stop chan struct{}) error {
	e.log.Info("start listening on blockchain events")

	for {
		select {
		case <-stop:
			return nil
		default:
			// Wait for a message on connection
			_, message, err := e.connection.RecvMsg()
			if err != nil {
				select {
				case <-stop:
					return nil
				default:
					return err
				}
			}

			events, err := decodeEvents(message)
			if err != nil {
				e.log.Warn("skipping message", zap.Error(err))
				continue
			}
			e.handle(events)
		}
	}
}

func decodeEvents(message *validator_pb2.Message) ([]*events_pb2.Event, error) {
	// Check if received is a client event message
	if message.MessageType != validator_pb2.Message_CLIENT_EVENTS {
		return nil, errors.Errorf("received a message not requested for: %v", message.MessageType)
	}

	eventList := events_pb2.EventList{}
	if err := proto.Unmarshal(message.Content, &eventList); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal the event list")
	}
	return eventList.Events, nil
}

// handle runs the handlers in the order the validator sent the events, the
// read model depends on a proposal being created before it is signed
func (e *EventListener) handle(events []*events_pb2.Event) {
	for _, event := range events {
		e.log.Info("event received: " + event.EventType)

		handler, ok := e.handlers[event.EventType]
		if !ok {
			e.log.Warn("handler missing for the event: " + event.EventType)
			continue
		}

		if err := handler(event.GetData()); err != nil {
			e.log.Error("error when handling the event", zap.String("eventType", event.EventType), zap.Error(err))
		}
	}
}

// SetHandler registers the handler of an event type, call it before Start
func (e *EventListener) SetHandler(eventType string, handler Handler) {
	e.handlers[eventType] = handler
}

func (e *EventListener) subscribeToEvent(eventType string) (err error) {

	subs := events_pb2.EventSubscription{
		EventType: eventType,
	}
	request := client_event_pb2.ClientEventsSubscribeRequest{
		Subscriptions: []*events_pb2.EventSubscription{
			&subs,
		},
	}

	serializedReq, err := proto.Marshal(&request)
	if err != nil {
		return
	}
	// Send the subscription request, get a correlation id
	// from the SDK
	corrId, err := e.connection.SendNewMsg(
		validator_pb2.Message_CLIENT_EVENTS_SUBSCRIBE_REQUEST,
		serializedReq,
	)
	if err != nil {
		return
	}
	e.log.Debug("waiting for receiving the subscription confirmation...")
	// Wait for response of message with specific correlation id
	_, response, err := e.connection.RecvMsgWithId(corrId)
	if err != nil {
		return
	}

	subsResponse :=
		client_event_pb2.ClientEventsSubscribeResponse{}

	err = proto.Unmarshal(response.Content, &subsResponse)
	if err != nil {
		return
	}
	if subsResponse.Status !=
		client_event_pb2.ClientEventsSubscribeResponse_OK {
		return errors.New("client subscription failed, subscription status: " + subsResponse.String())
	}

	unsubscribe := func() error {
		unsubscribeRequest :=
			client_event_pb2.ClientEventsUnsubscribeRequest{}
		serializedUnsubscribeRequest, err :=
			proto.Marshal(&unsubscribeRequest)
		if err != nil {
			return err
		}

		corrId, err := e.connection.SendNewMsg(
			validator_pb2.Message_CLIENT_EVENTS_UNSUBSCRIBE_REQUEST,
			serializedUnsubscribeRequest,
		)
		if err != nil {
			return err
		}
		// Wait for status
		_, unsubscribeResponse, err :=
			e.connection.RecvMsgWithId(corrId)
		if err != nil {
			return err
		}
		eventsUnsubscribeResponse := client_event_pb2.ClientEventsUnsubscribeResponse{}
		err = proto.Unmarshal(unsubscribeResponse.Content,
			&eventsUnsubscribeResponse)
		if err != nil {
			return err
		}
		if eventsUnsubscribeResponse.Status !=
			client_event_pb2.ClientEventsUnsubscribeResponse_OK {
			return errors.New("client couldn't unsubscribe successfully, status: " + eventsUnsubscribeResponse.String())
		}

		return nil
	}

	e.closerFunc = append(e.closerFunc, unsubscribe)
	e.log.Info("successfully subscribed to event '" + eventType + "'")

	return nil
}
