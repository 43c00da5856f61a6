package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listDemosTool defines the list_demos MCP tool.
var listDemosTool = mcp.NewTool("list_demos",
	mcp.WithDescription("List the enabled model demos with their input fields, adversarial techniques and saliency interpreters."),
)

// alignHotFlipTool defines the align_hotflip MCP tool.
var alignHotFlipTool = mcp.NewTool("align_hotflip",
	mcp.WithDescription("Compare an input with its HotFlip-perturbed version position by position and mark the flipped tokens."),
	mcp.WithArray("original",
		mcp.Required(),
		mcp.Description("Original tokens"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("flipped",
		mcp.Required(),
		mcp.Description("Flipped tokens; must have the same length as original"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

// alignInputReductionTool defines the align_input_reduction MCP tool.
var alignInputReductionTool = mcp.NewTool("align_input_reduction",
	mcp.WithDescription("Align a reduced input against the original and mark the tokens Input Reduction removed."),
	mcp.WithArray("original",
		mcp.Required(),
		mcp.Description("Original tokens"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("reduced",
		mcp.Required(),
		mcp.Description("Reduced tokens; must be an order-preserving subsequence of original"),
		mcp.Items(map[string]any{"type": "string"}),
	),
)

// saliencyTopKTool defines the saliency_top_k MCP tool.
var saliencyTopKTool = mcp.NewTool("saliency_top_k",
	mcp.WithDescription("Rank tokens by gradient saliency and return the k most important ones."),
	mcp.WithArray("tokens",
		mcp.Required(),
		mcp.Description("Tokens of the input"),
		mcp.Items(map[string]any{"type": "string"}),
	),
	mcp.WithArray("gradients",
		mcp.Required(),
		mcp.Description("Normalised gradient per token, in [0, 1]"),
		mcp.Items(map[string]any{"type": "number"}),
	),
	mcp.WithNumber("k",
		mcp.Description("Number of tokens to return (default 3)"),
	),
)

// predictTool defines the predict MCP tool.
var predictTool = mcp.NewTool("predict",
	mcp.WithDescription("Run a demo's model on the given inputs and summarise the prediction. The result is stored under a permalink."),
	mcp.WithString("demo",
		mcp.Required(),
		mcp.Description("Demo slug, as returned by list_demos"),
	),
	mcp.WithObject("inputs",
		mcp.Required(),
		mcp.Description("Form inputs keyed by field name"),
	),
)
