package stages

import "fmt"

// System personas for the text-model calls.
const (
	plannerSystem    = "You are a professional poster design planner."
	copywriterSystem = "You are a professional copywriter."
	validatorSystem  = "You are a design quality validator."
)

func planningPrompt(inputText string) string {
	return fmt.Sprintf(`Analyze the provided logo/mascot image and the following input text to create a comprehensive poster design plan.

INPUT TEXT: %s

Your task is to create a detailed design plan that includes:

1. COLOR PALETTE: Extract and analyze the dominant colors from the logo. List 3-5 colors with their approximate hex codes that should be used in the poster design.

2. LAYOUT DESIGN: Design a layout for a 720x1280 poster that incorporates the logo/mascot. Specify:
   - Logo placement (x, y, width, height as percentages of total dimensions)
   - Text placement zones (header, body, footer) with coordinates
   - Background design approach
   - Visual hierarchy

3. TEXT REQUIREMENTS: Based on the input text, specify:
   - What text should be generated (headline, body text, call-to-action, etc.)
   - Character limits for each text element
   - Font style recommendations (bold, regular, etc.)
   - Text color recommendations

4. IMAGE GENERATION PROMPT: Create a detailed prompt for image generation that:
   - Incorporates elements from the logo/mascot
   - Relates to the input text theme
   - Specifies the art style consistent with the logo
   - Describes how to integrate with the existing logo visually

Be specific and detailed. This plan will guide all subsequent stages of poster generation.

Format your response with clear section headers: COLOR PALETTE, LAYOUT DESIGN, TEXT REQUIREMENTS, and IMAGE GENERATION PROMPT.`, inputText)
}

func textGenerationPrompt(plan, inputText, feedback string) string {
	prompt := fmt.Sprintf(`Based on the following design plan, generate the text content for the poster.

DESIGN PLAN:
%s

ORIGINAL INPUT TEXT:
%s

Generate the text content following the TEXT REQUIREMENTS section of the design plan. Include:
1. Headline/Title text (2 words or 3 short words)
2. Body text (if specified) (1 short sentence or 2-3 short bullet points, at most 8 words total)
3. Call-to-action text (if specified) (2 words or 3 short words)

Format your response clearly with labels for each text element (e.g., "HEADLINE:", "BODY:", "CALL-TO-ACTION:").
Keep text concise and impactful. Follow any character limits specified in the plan.`, plan, inputText)

	if feedback != "" {
		prompt += fmt.Sprintf("\n\nPREVIOUS ATTEMPT FEEDBACK:\n%s\n\nPlease address this feedback in your new text generation.", feedback)
	}
	return prompt
}

func textValidationPrompt(plan, generatedText string) string {
	return fmt.Sprintf(`Review the generated text against the design plan.

DESIGN PLAN:
%s

GENERATED TEXT:
%s

Evaluate whether the text:
1. Follows the character limits specified
2. Matches the tone and style requirements
3. Includes all required text elements
4. Is appropriate for the poster design

Respond in this format:
VALIDATION: [PASS or FAIL]
FEEDBACK: [If FAIL, specific issues to fix. If PASS, brief confirmation.]

Be strict but fair in your evaluation.`, plan, generatedText)
}

func imageEditPrompt(plan, feedback string) string {
	prompt := fmt.Sprintf(`Generate a poster background following the IMAGE GENERATION PROMPT section of this design plan:

%s`, plan)
	if feedback != "" {
		prompt += fmt.Sprintf("\n\nPREVIOUS ATTEMPT FEEDBACK:\n%s\n\nAddress this feedback in the new image.", feedback)
	}
	return prompt
}

func imageValidationPrompt(plan, inputText string) string {
	return fmt.Sprintf(`You are a professional design validator. Compare the generated poster image against the original logo and design plan. The first image is the original logo, the second is the generated poster.

DESIGN PLAN:
%s

ORIGINAL INPUT TEXT:
%s

Evaluate the generated image based on:
1. LOGO INTEGRATION: Does it properly incorporate or complement the input logo/mascot?
2. COLOR PALETTE: Does it use colors compatible with the logo and plan?
3. RELEVANCE: Does it align with the image generation prompt in the plan?
4. QUALITY: Is the image quality acceptable for a poster?
5. COMPOSITION: Does it leave appropriate space for text placement as specified in the layout?

Respond in this format:
VALIDATION: [PASS or FAIL]
LOGO_INTEGRATED: [YES or NO]
FEEDBACK: [Detailed feedback. If FAIL, specify what needs to be fixed. If logo is not integrated, explicitly state this.]

Be thorough in your evaluation. The logo MUST be visibly integrated into the design.`, plan, inputText)
}

func overlayValidationPrompt(expectedText string) string {
	return fmt.Sprintf(`You are validating that text has been correctly added to a poster image.

EXPECTED TEXT (must match exactly):
%s

Please analyze the poster image and determine:
1. TEXT_CORRECT: Does the text content match the expected text exactly? (YES/NO)
2. TEXT_CLEAR: Is the text clearly generated and readable, not blurry or poorly rendered? (YES/NO)
3. FOUND_TEXT: What text did you actually find on the image? (transcribe it exactly)

Based on your analysis, provide a SPECIFIC_FIX instruction:
- If text is correct but blurry/unclear: One sentence to fix clarity (e.g., "Make the text sharper and clearer")
- If text is clear but incorrect: Use format "Change [found text] to [expected text]" for each element
- If text is both incorrect and unclear: Provide the "Change X to Y" instruction
- If text is correct and clear: Say "No changes needed"

Respond in this EXACT format:
TEXT_CORRECT: [YES or NO]
TEXT_CLEAR: [YES or NO]
FOUND_TEXT: [transcribe exactly what you see]
SPECIFIC_FIX: [one sentence instruction as described above]
VALIDATION: [APPROVED or REJECTED]

Be thorough and strict in your evaluation.`, expectedText)
}
