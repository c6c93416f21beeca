package agent

import (
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

type TemplateName string

const (
	TemplatePlanning          TemplateName = "planning"
	TemplateSimpleExplanation TemplateName = "simple-explanation"
	TemplateReasoning         TemplateName = "reasoning"
	TemplateExecution         TemplateName = "execution"
	TemplateEvaluation        TemplateName = "evaluation"
)

const planningTemplate = `
You are an expert project manager and planning agent.

Your goal is to take a high-level user request and break it down into a comprehensive, actionable, and logical step-by-step plan.

Rules for your plan:
1. **Focus on Sub-tasks**: Break the main goal into specific, bite-sized components.
2. **Logical Flow**: Ensure steps follow a natural order (e.g., Setup -> Development -> Testing).
3. **Actionability**: Each step must start with an action verb (e.g., "Research", "Install", "Configure").
4. **No Execution**: Do NOT explain how to do the steps or provide code. ONLY provide the steps.
5. **Format**: Return the steps as a clean, numbered list.

Task:
{task}

Provide the numbered plan below:
`

const simpleExplanationTemplate = `
Explain the following topic in SIMPLE language
using exactly 4 clear points.

Rules:
- Use easy words
- No long paragraphs
- Exactly 4 numbered points

Topic:
{task}
`

const reasoningTemplate = `
You are a reasoning agent.

Think step by step about the current TODO item.
Decide what action should be taken next.

Current task:
{task}

Current TODO:
{todo}

Think clearly before acting.
`

const executionTemplate = `
You are executing a task. Think step by step.

Current task:
{task}

Current TODO:
{todo}

Decide and describe the next action clearly.
`

const evaluationTemplate = `
You are an expert evaluator of task-planning quality.

Judge how well the generated TODO list satisfies the user's request.

IMPORTANT RULES:
- Do NOT require exact wording
- Do NOT penalize different task order
- Accept multiple valid plans

Evaluate based on:
- Relevance: tasks align with the goal
- Completeness: major steps are present
- Clarity: tasks are understandable
- Actionability: tasks can be executed

Score generously but honestly.

Scoring guide:
0.6-0.7 = acceptable
0.8-0.9 = strong
1.0 = excellent

User request:
{input}

Generated TODO list:
{output}

Evaluate the plan using the criteria above.
`

// PromptCatalog holds the fixed prompt templates. It has no mutable state:
// rendering the same template with the same arguments always yields the
// same text.
type PromptCatalog struct {
	templates map[TemplateName]prompts.PromptTemplate
}

func NewPromptCatalog() *PromptCatalog {
	return &PromptCatalog{
		templates: map[TemplateName]prompts.PromptTemplate{
			TemplatePlanning:          fstring(planningTemplate, "task"),
			TemplateSimpleExplanation: fstring(simpleExplanationTemplate, "task"),
			TemplateReasoning:         fstring(reasoningTemplate, "task", "todo"),
			TemplateExecution:         fstring(executionTemplate, "task", "todo"),
			TemplateEvaluation:        fstring(evaluationTemplate, "input", "output"),
		},
	}
}

func fstring(template string, vars ...string) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       template,
		InputVariables: vars,
		TemplateFormat: prompts.TemplateFormatFString,
	}
}

// Render fills the named template. Every placeholder the template declares
// must be present in args; extra args are ignored.
func (c *PromptCatalog) Render(name TemplateName, args map[string]string) (string, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return "", &UnknownTemplateError{Template: name}
	}

	values := make(map[string]any, len(tmpl.InputVariables))
	for _, v := range tmpl.InputVariables {
		val, ok := args[v]
		if !ok {
			return "", &MissingPlaceholderError{Template: name, Placeholder: v}
		}
		values[v] = val
	}

	out, err := tmpl.Format(values)
	if err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return out, nil
}

// Placeholders lists the arguments a template requires.
func (c *PromptCatalog) Placeholders(name TemplateName) []string {
	tmpl, ok := c.templates[name]
	if !ok {
		return nil
	}
	return append([]string(nil), tmpl.InputVariables...)
}

func (c *PromptCatalog) TaskPlan(task string) (string, error) {
	return c.Render(TemplatePlanning, map[string]string{"task": task})
}

func (c *PromptCatalog) SimpleExplanation(topic string) (string, error) {
	return c.Render(TemplateSimpleExplanation, map[string]string{"task": topic})
}

func (c *PromptCatalog) ReactPrompt(task, todo string) (string, error) {
	return c.Render(TemplateReasoning, map[string]string{"task": task, "todo": todo})
}

func (c *PromptCatalog) ExecutionPrompt(task, todo string) (string, error) {
	return c.Render(TemplateExecution, map[string]string{"task": task, "todo": todo})
}
