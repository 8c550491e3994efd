package agent

import (
	"github.com/etnz/aurora/docs"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func instruction(s string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{{Text: s}}}
}

// newFacilitator returns the expert talking to the user, that asks the
// other experts.
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: instruction(`
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user tracks an investment portfolio of ETFs, stocks, bonds and crypto assets.
			They come to understand their allocation, their performance and their recent activity.

			Devise a plan of questions to ask to each experts and come up with the best response to the user's request.
			Answer in markdown.

			The user will assume that you know about their tickers, ask the Analyst first to learn them.
		`),
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert grounded with Google Search on market news.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader,
		Very well aware of all the financial products and institutions,
		about the latest news about the different funds or companies.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: instruction(`
			You are a expert in Trading, you can search and find about anything related to
			financial institutions, companies, markets, funds etc. You Leverage Google Search to
			ground your assertions in a solid truth.
			You can get the latests news too, and you know how to relate them to the user's request.
			`),
		},
	}
}

// NewAnalyst returns the expert reading the user's portfolio through p.
func NewAnalyst(p Portfolio) *Expert {
	lib := Tools(p)
	dates, _ := docs.GetTopic("dates")

	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. They read the user's portfolio as tracked by the backend:
		summary, holdings, allocation, assets, transactions and prices.
		Ask the Analyst for any figure about the user's wealth.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: instruction(`
			You are a portfolio analyst in charge of the user's portfolio.
			You know how to use the Tools to extract relevant information about the user's portfolio and wealth.
			You are part of a team of experts, yours is everything about the user's portfolio. They might ask
			you questions about the user's portfolio, pardon their approximative language and figure out what they meant.

			Tools return markdown tables, amounts are in US dollars unless a currency is given.
			Assets are identified by an ID, use the assets tool to map tickers to IDs.

			Dates follow this documentation:

			` + dates),
		},
		Library: NewLibrary(lib),
	}
}
