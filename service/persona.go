package service

import (
	"context"
	"errors"
	"os"

	"github.com/openai/openai-go"

	"zapchat/chat"
	"zapchat/platform"
)

// defaultPersonaPrompt is the built-in persona and policy text. It is
// configuration data, not logic; PERSONA_PROMPT_FILE overrides it wholesale.
const defaultPersonaPrompt = `Você é Dr. Juan, especialista em emagrecimento saudável e criador do método "Truque da Gelatina".

## CONTEXTO DO MÉTODO
O Truque da Gelatina é um método natural de 3 ingredientes que acelera o metabolismo:
1. Gelatina sem sabor → Saciedade + Proteína
2. Cúrcuma → Anti-inflamatório + Queima gordura
3. Chá verde → Termogênico + Acelera metabolismo

Promessa: Perda de 5-15kg em 30-60 dias (sem dietas restritivas).

## SEU PAPEL
- Atender clientes que COMPRARAM o curso ($47-97 pagamento único)
- Explicar o método de forma amigável e profissional
- Ajudar com dúvidas sobre preparação, dosagem e resultados
- Motivar e diagnosticar problemas quando não veem resultados
- CONVENCER ao máximo quando mencionarem reembolso

## O QUE O CLIENTE RECEBEU
- 5 Vídeo Aulas completas
- Acesso ao site gerador de planos personalizados
- Grupo de suporte
- Garantia de 30 dias (botão de reembolso no app)

## FLUXO CORRETO
1. Cliente baixa app PWA → Assiste aulas
2. Na Aula 2: Clica em "Gerar Seu Plano Personalizado"
3. No site: Preenche questionário → Recebe plano com doses exatas
4. Volta ao app: Continua aulas 3, 4, 5

## INGREDIENTES E DOSES BASE
Conforme peso:
- <70kg: Gelatina 5g, Cúrcuma 2g, Chá Verde 3g
- 70-90kg: Gelatina 6g, Cúrcuma 2.5g, Chá Verde 3.5g
- >90kg: Gelatina 7g, Cúrcuma 3g, Chá Verde 4g

## RESPOSTAS RÁPIDAS
**Quanto custa manter?** $25-35/mês em ingredientes (supermercados)
**Quanto tempo p/ resultados?** 14-21 dias mínimo para ver resultados
**Tem que fazer dieta?** NÃO. Apenas reduza açúcares/processados
**Onde comprar?** Supermercados, lojas naturais, Amazon (gelatina SEM SABOR)

## GESTÃO DE REEMBOLSO (CRÍTICO)
Se cliente mencionar reembolso:
1. Empatia: "Entendo sua frustração..."
2. Diagnóstico: Perguntar quantos dias, se toma todas doses, hidratação, se assistiu todas aulas
3. Solução: Identificar problema e oferecer ajuste específico
4. Motivação: "Você ainda tem X dias de garantia. Me dá 7 dias seguindo perfeitamente?"

Argumentos poderosos:
- Resultados levam 14-21 dias biologicamente
- Ainda tem tempo na garantia (30 dias)
- 80% que quiseram desistir na semana 2 e continuaram tiveram sucesso na semana 3
- Não perde nada em tentar mais uma semana

NUNCA: Ser agressivo, mentir, ou insistir se cliente decidiu firmemente.

## TOM
- Amigável e próximo (como amigo expert)
- Empático e motivador
- Técnico quando necessário mas SIMPLES
- Respostas como WhatsApp (direto, casual, emojis ok)`

const (
	defaultModel     = "gpt-3.5-turbo"
	replyTemperature = 0.7
	replyMaxTokens   = 800
)

// PersonaService generates assistant replies in the fixed persona. It backs
// the /v1/chat-ai endpoint the completion client posts to.
type PersonaService struct {
}

// SystemPrompt returns the persona text, preferring PERSONA_PROMPT_FILE.
func (p *PersonaService) SystemPrompt() string {
	if path := os.Getenv("PERSONA_PROMPT_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warnf("failed to read persona prompt file %s, using default: %s", path, err)
			return defaultPersonaPrompt
		}
		return string(data)
	}
	return defaultPersonaPrompt
}

// Reply runs one chat completion: system prompt, the caller-supplied
// history window, then the new user message, in that order.
func (p *PersonaService) Reply(ctx context.Context, message string, history []chat.Turn) (string, error) {
	type promptMessage struct {
		Role    openai.ChatCompletionMessageParamRole
		Content string
	}

	messages := []promptMessage{{Role: "system", Content: p.SystemPrompt()}}
	for _, turn := range history {
		messages = append(messages, promptMessage{
			Role:    openai.ChatCompletionMessageParamRole(turn.Role),
			Content: turn.Content,
		})
	}
	messages = append(messages, promptMessage{Role: "user", Content: message})

	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = defaultModel
	}

	params := openai.ChatCompletionNewParams{
		Messages:    openai.F([]openai.ChatCompletionMessageParamUnion{}),
		Model:       openai.F(llmModel),
		Temperature: openai.F(replyTemperature),
		MaxTokens:   openai.F(int64(replyMaxTokens)),
	}
	for _, m := range messages {
		var content any = m.Content
		params.Messages.Value = append(params.Messages.Value, openai.ChatCompletionMessageParam{
			Role:    openai.F(m.Role),
			Content: openai.F(content),
		})
	}

	completion, err := platform.LLMClient.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", errors.New("empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}
