package tone

// toneSystemPrompt is sent as the system message of every remote classification.
const toneSystemPrompt = `You are a tone analyzer. You respond ONLY with valid JSON, no other text.`

// toneUserPrompt is the user message; {MESSAGE} is replaced with the sentence.
const toneUserPrompt = `Analyze this message's emotional tone and identify which specific words are emphasized.

IMPORTANT: "emphasizedWords" should contain the exact words from the message that carry emotional weight or would be stressed when spoken. This varies by context:
- "I can't believe YOU did that" → emphasize "you" (shock at the person)
- "I CAN'T believe you did that" → emphasize "can't" (disbelief)
- "I can't believe you did THAT" → emphasize "that" (shock at the action)

Return ONLY valid JSON:
{
  "emotional": {
    "primary": "happy|sad|angry|excited|anxious|neutral",
    "confidence": 0.0-1.0
  },
  "style": {
    "primary": "formal|casual|sarcastic|urgent|friendly",
    "confidence": 0.0-1.0
  },
  "intensity": "low|medium|high",
  "emphasizedWords": ["word1", "word2"]
}

Message: "{MESSAGE}"`

const messagePlaceholder = "{MESSAGE}"
