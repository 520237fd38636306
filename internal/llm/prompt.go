package llm

import "fmt"

// SystemPrompt is sent with every menu request.
const SystemPrompt = "You are a helpful assistant that generates restaurant menus. Always respond with valid JSON only, no additional text."

const menuPromptTemplate = `Generate a complete restaurant menu for: %s

Create a menu with:
- A creative restaurant name
- A brief, understated description (optional, 1-2 sentences max)
- 3-5 menu categories (e.g., Appetizers, Main Courses, Desserts, Beverages)
- 3-6 items per category

IMPORTANT: Write like a real restaurant menu, not marketing copy:
- Keep descriptions SHORT and SIMPLE (8-15 words max)
- Focus on key ingredients, not adjectives
- Avoid excessive marketing language like "mouth-watering," "indulgent retreat," "artisanal journey"
- Use concise, ingredient-focused descriptions
- Examples of good descriptions:
  * "Butter croissant with dark chocolate"
  * "Fresh mozzarella, tomato, basil, olive oil"
  * "Grilled salmon with lemon butter, seasonal vegetables"
  * "House-made pasta with tomato sauce and parmesan"

For each menu item, provide:
- name: the dish name (simple, authentic)
- description: concise, ingredient-focused description (8-15 words)
- price: realistic price in USD format (e.g., "$12.95")
- category: the category it belongs to

Return ONLY a JSON object in this exact format:
{
  "name": "Restaurant Name",
  "description": "Brief description",
  "sections": [
    {
      "category": "Category Name",
      "items": [
        {
          "name": "Item Name",
          "description": "Item description",
          "price": "$X.XX",
          "category": "Category Name"
        }
      ]
    }
  ]
}`

// BuildMenuPrompt embeds the user's restaurant description in the menu request.
func BuildMenuPrompt(prompt string) string {
	return fmt.Sprintf(menuPromptTemplate, prompt)
}
