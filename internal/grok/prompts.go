package grok

import "encoding/json"

// SearchResult is one structured hit returned by the search system prompt's
// JSON array output.
type SearchResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	Source        string `json:"source,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
}

// UnmarshalJSON accepts the "description" alias for Snippet that the search
// prompt's JSON schema actually emits.
func (r *SearchResult) UnmarshalJSON(data []byte) error {
	type alias SearchResult
	aux := struct {
		Description string `json:"description"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Snippet == "" && aux.Description != "" {
		r.Snippet = aux.Description
	}
	return nil
}

// FormatSearchResults renders results as a Markdown digest. The web_search
// tool does not call it; it returns the model's raw output.
func FormatSearchResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	sections := make([]string, 0, len(results))
	for i, r := range results {
		var parts []string
		parts = append(parts, headingFor(i, r.Title))
		if r.URL != "" {
			parts = append(parts, "**URL:** "+r.URL)
		}
		if r.Snippet != "" {
			parts = append(parts, "**Summary:** "+r.Snippet)
		}
		if r.Source != "" {
			parts = append(parts, "**Source:** "+r.Source)
		}
		if r.PublishedDate != "" {
			parts = append(parts, "**Published:** "+r.PublishedDate)
		}
		sections = append(sections, joinLines(parts))
	}
	return joinSections(sections)
}

func headingFor(index int, title string) string {
	return "## Result " + itoa(index+1) + ": " + title
}

func joinLines(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n"
		}
		out += p
	}
	return out
}

func joinSections(sections []string) string {
	out := ""
	for i, s := range sections {
		if i > 0 {
			out += "\n\n---\n\n"
		}
		out += s
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	return string(b)
}

// SearchPrompt is the system prompt driving the web_search tool: it asks the
// model to return a strict JSON array of {title,url,description} objects
// from a multi-source retrieval pass.
const SearchPrompt = `
# Role: MCP高效搜索助手

## Profile
- language: 中文
- description: 你是一个基于MCP（Model Context Protocol）的智能搜索工具，专注于执行高质量的信息检索任务，并将搜索结果转化为标准JSON格式输出。核心优势在于搜索的全面性、信息质量评估与严格的JSON格式规范，为用户提供结构化、即时可用的搜索结果。
- background: 深入理解信息检索理论和多源搜索策略，精通JSON规范标准（RFC 8259）及数据结构化处理。熟悉GitHub、Stack Overflow、技术博客、官方文档等多源信息平台的检索特性，具备快速评估信息质量和提炼核心价值的专业能力。
- personality: 精准执行、注重细节、结果导向、严格遵循输出规范
- expertise: 多维度信息检索、JSON Schema设计与验证、搜索质量评估、自然语言信息提炼、技术文档分析、数据结构化处理
- target_audience: 需要进行信息检索的开发者、研究人员、技术决策者、需要结构化搜索结果的应用系统

## Rules
- 输出必须是合法的JSON数组，每个元素包含 title、url、description 三个字段
- 所有键名和字符串值使用双引号，禁止单引号
- 不输出解释、前后缀或代码块标记，只返回JSON数组
- 若搜索失败，返回 {"error": "错误描述", "results": []}

## Initialization
作为MCP高效搜索助手，你必须遵守上述Rules，按输出的JSON必须语法正确、可直接解析，不添加任何代码块标记、解释或确认性文字。
`

// FetchPrompt is the system prompt driving the web_fetch tool: it asks the
// model to convert a fetched page into a structurally faithful Markdown
// document.
const FetchPrompt = `
# Profile: Web Content Fetcher

- **Language**: 中文
- **Role**: 你是一个专业的网页内容抓取和解析专家，获取指定 URL 的网页内容，并将其转换为与原网页高度一致的结构化 Markdown 文本格式。

## Rules
- 返回内容必须与原网页内容完全一致，不能有信息缺失
- 不进行内容摘要、精简、改写或总结
- 保留原始的段落划分、换行、空格等格式细节
- 标题使用 #/##/### 等层级还原，代码使用代码块包裹，图片使用 ![alt](url)，链接使用 [文本](url)

## Initialization
当接收到 URL 时，按上述规则抓取并返回完整的结构化 Markdown 文档。
`
