package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoClient adapts an eino chat model (Ark in production) to the Client
// contract. Streaming is never used by this pipeline.
type EinoClient struct {
	chatModel model.ChatModel
	timeout   time.Duration
}

// NewEinoClient wraps an already constructed chat model.
func NewEinoClient(chatModel model.ChatModel, timeout time.Duration) *EinoClient {
	return &EinoClient{chatModel: chatModel, timeout: timeout}
}

// Generate converts the prompt turns into eino schema messages and invokes
// the model synchronously.
func (c *EinoClient) Generate(ctx context.Context, req Request) (Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]*schema.Message, 0, len(req.Messages))
	for _, turn := range req.Messages {
		switch turn.Role {
		case RoleSystem:
			messages = append(messages, schema.SystemMessage(turn.Content))
		case RoleUser:
			messages = append(messages, schema.UserMessage(turn.Content))
		default:
			return Response{}, fmt.Errorf("unsupported prompt role %q", turn.Role)
		}
	}

	out, err := c.chatModel.Generate(callCtx, messages)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return Response{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return Response{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return Response{Content: out.Content}, nil
}
