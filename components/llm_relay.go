package components

import (
	"context"
	"fmt"

	"github.com/berrylands/noflo/component"
	"github.com/berrylands/noflo/ip"
	"github.com/berrylands/noflo/model"
)

// LLMRelay sends every data IP received on PROMPT to a configured
// model.ChatModel and posts the reply on REPLY. It exists to give the
// LLM provider SDKs a concrete home inside a running network.
type LLMRelay struct {
	*Base
	prompt *component.BasePort
	reply  *component.BasePort

	chat  model.ChatModel
	cost  *CostTracker
	name  string
}

// NewLLMRelay builds an LLMRelay that calls chat for every prompt and
// records token cost under modelName in its CostTracker.
func NewLLMRelay(chat model.ChatModel, modelName string, cost *CostTracker) *LLMRelay {
	r := &LLMRelay{
		Base:   NewBase(),
		prompt: component.NewPort("PROMPT"),
		reply:  component.NewPort("REPLY"),
		chat:   chat,
		cost:   cost,
		name:   modelName,
	}
	r.AddInPort("PROMPT", r.prompt)
	r.AddOutPort("REPLY", r.reply)
	r.prompt.OnAttachSocket(func(s component.Socket, _ *int) {
		s.OnIP(r.handleIP)
	})
	return r
}

func (r *LLMRelay) handleIP(packet ip.IP) {
	if packet.Kind() != ip.Data {
		return
	}
	r.beginWork()
	defer r.endWork()

	text, _ := packet.Data().(string)
	out, err := r.chat.Chat(context.Background(), []model.Message{
		{Role: model.RoleUser, Content: text},
	}, nil)
	if err != nil {
		reply := ip.New(ip.Data, fmt.Errorf("llm relay: %w", err), packet.Metadata())
		for _, s := range r.reply.Sockets() {
			s.Post(reply)
		}
		return
	}

	if r.cost != nil {
		r.cost.RecordLLMCall(r.name, len(text)/4, len(out.Text)/4, r.NodeID())
	}

	reply := ip.New(ip.Data, out.Text, packet.Metadata())
	for _, s := range r.reply.Sockets() {
		s.Post(reply)
	}
}
