package solver

import "fmt"

// solvePrompt builds the vision instruction for one question image. The
// response format is prescriptive so the renderer can rely on the
// Question/Solution/Answer/Key Concepts structure.
func solvePrompt(questionNumber int) string {
	return fmt.Sprintf(`You are the world's best mathematics and statistics tutor. Analyze this question image and provide a complete solution.

REQUIREMENTS:
1. Extract the exact question text from the image
2. Identify the type of problem (probability, statistics, algebra, etc.)
3. Provide VERY detailed step-by-step solution in LaTeX format
4. Explain each step in simple language suitable for students
5. Include all formulas and calculations
6. For multiple choice, identify the correct answer

FORMAT your response EXACTLY as:
\textbf{Question %d:} [extracted question text]

\textbf{Solution:}
\begin{enumerate}
\item \textbf{Step 1:} [Identify problem type and what we need to find]
\item \textbf{Step 2:} [List given information clearly]
\item \textbf{Step 3:} [Choose appropriate formula/method]
\item \textbf{Step 4:} [Show calculations step by step]
\item \textbf{Step 5:} [State final answer clearly]
\end{enumerate}

\textbf{Answer:} [Final answer with units]

\textbf{Key Concepts:} [List important concepts]

Use proper LaTeX math notation and keep explanations very simple.`, questionNumber)
}

// simulatedSolutions are deterministic placeholder solutions used whenever
// the vision model cannot be reached or fails. Keyed by question number so
// re-runs produce identical output.
var simulatedSolutions = []string{
	`\textbf{Question %d:} A jar contains 6 red balls and 8 blue balls. Two balls are drawn without replacement. What is the probability that the first ball is red and the second ball is blue?

\textbf{Solution:}
\begin{enumerate}
\item \textbf{Step 1:} This is a probability problem with drawing without replacement. We need P(first red AND second blue).
\item \textbf{Step 2:} Given information: Red balls: 6, Blue balls: 8, Total balls: 14, Drawing without replacement
\item \textbf{Step 3:} For dependent events: $P(A \text{ and } B) = P(A) \times P(B|A)$
\item \textbf{Step 4:} Calculate: $P(\text{first red}) = \frac{6}{14} = \frac{3}{7}$, $P(\text{second blue | first red}) = \frac{8}{13}$
\item \textbf{Step 5:} Final: $P(\text{both events}) = \frac{3}{7} \times \frac{8}{13} = \frac{24}{91} \approx 0.264$
\end{enumerate}

\textbf{Answer:} $\frac{24}{91}$ or approximately 0.264 (26.4%%)

\textbf{Key Concepts:} Conditional probability, dependent events, multiplication rule`,

	`\textbf{Question %d:} Customers enter a store following a Poisson distribution with rate 8 per hour. What's the probability exactly 5 customers enter in 15 minutes?

\textbf{Solution:}
\begin{enumerate}
\item \textbf{Step 1:} This is a Poisson distribution problem. We need to adjust the rate for 15 minutes.
\item \textbf{Step 2:} Given: Rate = 8 customers/hour, Time = 15 minutes = 0.25 hours, Want: P(X = 5)
\item \textbf{Step 3:} Adjust rate: $\lambda = 8 \times 0.25 = 2$ (for 15 min), Use: $P(X = k) = \frac{\lambda^k e^{-\lambda}}{k!}$
\item \textbf{Step 4:} Calculate: $P(X = 5) = \frac{2^5 e^{-2}}{5!} = \frac{32 \times 0.1353}{120} = 0.036$
\item \textbf{Step 5:} The probability is 0.036 or 3.6%%
\end{enumerate}

\textbf{Answer:} 0.036 (3.6%%)

\textbf{Key Concepts:} Poisson distribution, rate conversion, exponential calculations`,

	`\textbf{Question %d:} The average of 15 observations is 45. First 8 observations average 41, last 8 average 53. Find the 8th observation.

\textbf{Solution:}
\begin{enumerate}
\item \textbf{Step 1:} This involves overlapping groups. The 8th observation appears in both groups.
\item \textbf{Step 2:} Given: 15 observations (mean=45), First 8 (mean=41), Last 8 (mean=53)
\item \textbf{Step 3:} Calculate sums: Total = $15 \times 45 = 675$, First 8 = $8 \times 41 = 328$, Last 8 = $8 \times 53 = 424$
\item \textbf{Step 4:} The 8th observation is counted twice: $328 + 424 - \text{8th obs} = 675$
\item \textbf{Step 5:} Solve: 8th observation = $752 - 675 = 77$
\end{enumerate}

\textbf{Answer:} 77

\textbf{Key Concepts:} Mean calculations, overlapping groups, algebraic manipulation`,
}

// simulateSolution returns the canned solution for a question number.
func simulateSolution(questionNumber int) string {
	tpl := simulatedSolutions[questionNumber%len(simulatedSolutions)]
	return fmt.Sprintf(tpl, questionNumber) + "\n\n\\hrule\n\\vspace{1em}\n"
}
