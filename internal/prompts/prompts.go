package prompts

const analysisPrompt = `IMPORTANT: First determine if this image contains a plant leaf or vegetation. If the image shows humans, animals, objects, buildings, or anything other than plant leaves/vegetation, return the "invalid_image" response format below.

If this is a valid leaf/plant image, analyze it for diseases and return the results in JSON format.

Please identify:
1. Whether this is actually a leaf/plant image
2. Disease name (if any)
3. Disease type/category or invalid_image
4. Severity level (mild, moderate, severe)
5. Confidence score (0-100)
6. Symptoms observed
7. Possible causes
8. Treatment recommendations

For NON-LEAF images (humans, animals, objects, or not detected as leaves, etc.), return this format:
{
    "disease_detected": false,
    "disease_name": null,
    "disease_type": "invalid_image",
    "severity": "none",
    "confidence": 95,
    "symptoms": ["This image does not contain a plant leaf"],
    "possible_causes": ["Invalid image type uploaded"],
    "treatment": ["Please upload an image of a plant leaf for disease analysis"]
}

For VALID LEAF images, return this format:
{
    "disease_detected": true/false,
    "disease_name": "name of disease or null",
    "disease_type": "fungal/bacterial/viral/pest/nutrient_deficiency/healthy",
    "severity": "mild/moderate/severe/none",
    "confidence": 85,
    "symptoms": ["list", "of", "symptoms"],
    "possible_causes": ["list", "of", "causes"],
    "treatment": ["list", "of", "treatments"]
}

Respond with a single JSON object and nothing else.`

// Analysis returns the instruction prompt that pins the model to the
// leaf analysis JSON schema.
func Analysis() string {
	return analysisPrompt
}
