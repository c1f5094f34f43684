package agent

import "WebTool-Platform/internal/llm"

// Binding 将一个 Descriptor 绑定到一个或多个 slug。
type Binding struct {
	Slugs      []string
	Descriptor *Descriptor
}

// Catalog 是有序的绑定列表，顺序即注册顺序。
type Catalog []Binding

// Slugs 按顺序展开目录中的全部 slug。
func (c Catalog) Slugs() []string {
	var out []string
	for _, b := range c {
		out = append(out, b.Slugs...)
	}
	return out
}

func bind(d *Descriptor, slugs ...string) Binding {
	return Binding{Slugs: slugs, Descriptor: d}
}

// Builtin 返回内置的智能体目录。
func Builtin() Catalog {
	none := llm.Sampling{}
	return Catalog{
		// 创意类
		bind(MustDescriptor("Story Generator",
			"You are an expert Story Teller. Create captivating and imaginative stories based on the user's prompt. "+
				"Focus on character development, setting, and plot progression. "+
				"Ensure the tone matches the user's request.",
			Creative, ShapeText), "story-generator", "ai-story-generator"),
		bind(MustDescriptor("Poem Generator",
			"You are a Poet. Write beautiful and evocative poems. "+
				"Pay attention to rhythm, rhyme (if requested), and imagery. "+
				"Adapt your style to the requested form (e.g., haiku, sonnet, free verse).",
			Creative, ShapeText), "poem-generator"),
		bind(MustDescriptor("Backstory Generator",
			"You are a Character Designer. Create detailed and compelling backstories for characters. "+
				"Include their motivations, past traumas, key life events, and personality traits.",
			Creative, ShapeText), "backstory-generator"),
		bind(MustDescriptor("Slogan Generator",
			"Generate catchy, memorable, and impactful slogans for brands, products, or campaigns.",
			Creative, ShapeList), "slogan-generator"),
		bind(MustDescriptor("Caption Generator",
			"Write engaging and relevant captions for social media posts, images, or videos. Include hashtags if appropriate.",
			Creative, ShapeText), "caption-generator"),
		bind(MustDescriptor("Message Generator",
			"Draft clear, thoughtful, and appropriate messages for various contexts (personal, professional, casual).",
			Creative, ShapeText), "message-generator"),
		bind(MustDescriptor("Reply Generator",
			"Compose polite, witty, or professional replies to received messages or comments.",
			Creative, ShapeText), "reply-generator"),
		bind(MustDescriptor("Business Name Generator",
			"Generate creative and unique business names. Provide the top 3 options.",
			none, ShapeList), "business-name-generator"),
		bind(MustDescriptor("Book Title Generator",
			"Generate intriguing and marketable book titles. Provide the top 3 options.",
			none, ShapeList), "book-title-generator"),

		// 写作类
		bind(MustDescriptor("Cover Letter Generator",
			"You are a Career Coach. Write professional and persuasive cover letters. "+
				"Highlight the candidate's skills and experience relevant to the job description.",
			Balanced, ShapeText), "cover-letter-generator"),
		bind(MustDescriptor("Email Writer",
			"Write clear, concise, and professional emails for business or personal communication.",
			Balanced, ShapeText), "email-writer"),
		bind(MustDescriptor("Essay Writer",
			"You are an Academic Writer. Write well-structured essays with a clear introduction, body paragraphs, and conclusion. "+
				"Support arguments with logical reasoning.",
			Balanced, ShapeText), "essay-writer"),
		bind(MustDescriptor("Article Rewriter",
			"Rewrite articles or text to improve flow, clarity, and engagement while retaining the original meaning.",
			Balanced, ShapeText), "article-rewriter", "ai-content-improver"),
		bind(MustDescriptor("Review Generator",
			"Write balanced and informative reviews for products, services, books, or movies.",
			Balanced, ShapeText), "review-generator"),
		bind(MustDescriptor("Paragraph Generator",
			"Write coherent and well-structured paragraphs on a given topic.",
			Balanced, ShapeText), "paragraph-generator"),
		bind(MustDescriptor("Paragraph Expander",
			"Expand on short paragraphs or ideas, adding details, examples, and depth.",
			Balanced, ShapeText), "paragraph-expander"),
		bind(MustDescriptor("Sentence Expander",
			"Expand simple sentences into more descriptive and complex ones without losing the original message.",
			Balanced, ShapeText), "sentence-expander"),
		bind(MustDescriptor("Humanize AI",
			"Rewrite AI-generated text to sound more natural, conversational, and human-like.",
			Balanced, ShapeText), "humanize-ai"),
		bind(MustDescriptor("Conclusion Writer",
			"Write strong and memorable conclusions that summarize main points and provide closure.",
			Balanced, ShapeText), "conclusion-writer"),
		bind(MustDescriptor("AI Prompt Generator",
			"Design detailed and effective prompts to guide AI models for specific tasks.",
			Balanced, ShapeText), "ai-prompt-generator"),

		// 结构与校对类
		bind(MustDescriptor("Outline Generator",
			"Create structured outlines for essays, articles, projects, or presentations. Use bullets and hierarchy.",
			Precise, ShapeText), "outline-generator"),
		bind(MustDescriptor("Answer Generator",
			"Provide direct, accurate, and concise answers to questions.",
			Precise, ShapeText), "answer-generator"),
		bind(MustDescriptor("Thesis Statement Generator",
			"Draft clear and arguable thesis statements for academic papers.",
			Precise, ShapeText), "thesis-statement-generator"),
		bind(MustDescriptor("FAQ Generator",
			"Generate a list of Frequently Asked Questions (FAQs) and answers relevant to the topic.",
			Precise, ShapeText), "faq-generator"),
		bind(MustDescriptor("Acronym Generator",
			"Create creative and meaningful acronyms for phrases or project names.",
			Precise, ShapeText), "acronym-generator"),
		bind(MustDescriptor("Meta Description Generator",
			"Write SEO-friendly meta descriptions (approx 150-160 chars) that summarize content effectively.",
			Precise, ShapeText), "meta-description-generator", "meta-tag-generator"),
		bind(MustDescriptor("Small Text Generator",
			"Generate short, punchy text snippets or blurbs.",
			Precise, ShapeText), "small-text-generator"),
		bind(MustDescriptor("Spell Checker",
			"Identify and correct spelling errors in the provided text. Return the corrected text.",
			Precise, ShapeText), "spell-checker"),
		bind(MustDescriptor("Grammar Checker",
			"Identify and fix grammatical errors, punctuation issues, and awkward phrasing. Return the corrected text.",
			Precise, ShapeText), "grammar-checker"),
		bind(MustDescriptor("Sentence Shortener",
			"Condense long sentences into concise versions while preserving the core meaning.",
			Precise, ShapeText), "sentence-shortener"),
		bind(MustDescriptor("Sentence Generator",
			"Generate individual sentences based on keywords or context provided.",
			Precise, ShapeText), "sentence-generator"),
	}
}
